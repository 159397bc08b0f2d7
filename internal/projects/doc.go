// Package projects persists the project registry: the working
// directories a UI can open terminals for. It is a collaborator of the
// terminal core, not part of it: spawning never validates project ids
// against this registry.
package projects
