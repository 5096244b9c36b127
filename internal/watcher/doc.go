// Package watcher turns fsnotify notifications for one watch root into an
// ordered stream of Events.
//
// A Target names what the user asked to watch. Directory targets watch
// themselves; file targets watch their parent directory and Target.Matches
// narrows events down to the file. Every directory beneath the root is
// watched too, including directories created later.
//
// Events is closed when the underlying notification channel goes away. That is
// a terminal condition: callers should stop rather than try to re-watch.
package watcher
