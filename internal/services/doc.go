// Package services holds the error taxonomy shared by host collaborator
// implementations and the clients that consume them.
//
// Collaborators tag failures with the exported sentinels so core components
// can classify them with errors.Is without depending on concrete adapters.
package services
