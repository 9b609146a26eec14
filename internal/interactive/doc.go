// Package interactive implements the command interpreter of the
// interactive client.
//
// Each input line is parsed into a Command, executed against a
// session.State and the catalog, download and preview collaborators, and
// answered with an Effect describing what changed. The interpreter owns
// the single preview slot and never lets a per-command failure escape as
// anything but an EffectError.
//
// # Grammar
//
//	q | h | l | b | back | status | play | stop
//	m [tracks|albums|artists]
//	s|sa|st <query>          explicit tracks/albums/artists search
//	<number> | [1,3-5] | 1,3-5 | all | *
//	p <number> | t<number>   previews
//	anything else            search in the current mode
//
// What a selection does depends on the view: tracks and albums are
// downloaded, an artist opens its profile, and inside a profile the
// albums are downloaded.
package interactive
