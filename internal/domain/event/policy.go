package event

// UpdatableFields is the whitelist of fields an owner may change after
// creation. Owner, participants and invites move only through the dedicated
// lifecycle operations, never through a generic field update.
var UpdatableFields = map[string]bool{
	"title":       true,
	"description": true,
	"location":    true,
	"reward":      true,
	"expire":      true,
	"points":      true,
	"x":           true,
	"y":           true,
}

// CanInsert reports whether actor may insert an event record directly.
// Always false: creation goes through the create orchestrator, the only
// path that initializes owner and empty participant state.
func CanInsert(actor string, e Event) bool {
	return false
}

// CanUpdateFields reports whether actor may update exactly the named fields.
// Denies non-owners and any field outside the whitelist.
func CanUpdateFields(actor string, e Event, fields []string) bool {
	if actor == "" || actor != e.Owner {
		return false
	}
	for _, f := range fields {
		if !UpdatableFields[f] {
			return false
		}
	}
	return true
}

// CanDelete reports whether actor may remove the event.
// An event with helpers cannot be deleted, even by its owner.
func CanDelete(actor string, e Event, participantCount int) bool {
	return actor != "" && actor == e.Owner && participantCount == 0
}

// CanRead reports whether viewer may see the event at all. Private events
// are visible only to their owner and explicitly invited users; anonymous
// viewers see public events only.
func CanRead(viewer string, e Event, invited []string) bool {
	if e.Public {
		return true
	}
	if viewer == "" {
		return false
	}
	if viewer == e.Owner {
		return true
	}
	for _, u := range invited {
		if u == viewer {
			return true
		}
	}
	return false
}
