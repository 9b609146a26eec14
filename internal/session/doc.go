// Package session holds the state of an interactive session: the search
// mode, the current result list, and the navigation stack used to leave
// an artist profile.
package session
