package watcher

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Kind classifies a filesystem change.
type Kind uint8

const (
	KindCreate Kind = 1 << iota
	KindContent
	KindMetadata
	KindRemove
	KindRename

	KindOther Kind = 0
)

var kindNames = map[Kind]string{
	KindCreate:   "create",
	KindContent:  "write",
	KindMetadata: "metadata",
	KindRemove:   "remove",
	KindRename:   "rename",
}

var kindAliases = map[string]Kind{
	"create":   KindCreate,
	"write":    KindContent,
	"content":  KindContent,
	"modify":   KindContent,
	"metadata": KindMetadata,
	"chmod":    KindMetadata,
	"attrib":   KindMetadata,
	"remove":   KindRemove,
	"delete":   KindRemove,
	"rename":   KindRename,
	"move":     KindRename,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "other"
}

// KindSet is a set of kinds that count as a change.
type KindSet uint8

var (
	AllKinds     = NewKindSet(KindCreate, KindContent, KindMetadata, KindRemove, KindRename)
	DefaultKinds = NewKindSet(KindCreate, KindContent, KindMetadata, KindRename)
)

func NewKindSet(kinds ...Kind) KindSet {
	var set KindSet
	for _, kind := range kinds {
		set |= KindSet(kind)
	}
	return set
}

func (s KindSet) Has(kind Kind) bool {
	return kind != KindOther && uint8(s)&uint8(kind) != 0
}

func (s KindSet) String() string {
	if s == 0 {
		return ""
	}
	names := make([]string, 0, len(kindNames))
	for kind, name := range kindNames {
		if s.Has(kind) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// ParseKinds parses a comma separated list such as "metadata,write".
// "all" selects every kind.
func ParseKinds(value string) (KindSet, error) {
	var set KindSet
	for _, part := range strings.Split(value, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if name == "all" {
			set |= AllKinds
			continue
		}
		kind, ok := kindAliases[name]
		if !ok {
			return 0, fmt.Errorf("unknown event kind %q", name)
		}
		set |= NewKindSet(kind)
	}
	if set == 0 {
		return 0, fmt.Errorf("no event kinds in %q", value)
	}
	return set, nil
}

// Event is one change notification.
type Event struct {
	Kind  Kind
	Paths []string
}

func kindOf(op fsnotify.Op) Kind {
	switch {
	case op.Has(fsnotify.Create):
		return KindCreate
	case op.Has(fsnotify.Write):
		return KindContent
	case op.Has(fsnotify.Remove):
		return KindRemove
	case op.Has(fsnotify.Rename):
		return KindRename
	case op.Has(fsnotify.Chmod):
		return KindMetadata
	default:
		return KindOther
	}
}

func convertEvent(event fsnotify.Event) Event {
	return Event{
		Kind:  kindOf(event.Op),
		Paths: []string{event.Name},
	}
}
