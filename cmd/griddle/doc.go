// Command griddle drives supervised batch bakes against a host environment
// through a JSON bridge command: list items, resolve the bake interval,
// run the sequential pass, and manage broken references and auxiliary data.
package main
