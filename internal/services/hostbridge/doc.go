// Package hostbridge shells out to the host-environment bridge command and
// decodes its JSON responses into the collaborator contracts the session
// consumes: inventory, per-item processing, range candidates and attribute
// reads, the playback window, broken-reference editing, and auxiliary wipes.
package hostbridge
