package timetable

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Identity reduces a conflict to a deterministic string built only from
// semantically stable fields. The same logical conflict always produces the
// same identity across detection passes, which is what reconciliation keys
// on. Database ids and timestamps never participate.
func (c Conflict) Identity() string {
	switch c.Kind {
	case ConflictRoomCapacity:
		return fmt.Sprintf("capacity|%s|%s|%s|%s", firstCode(c.CourseCodes), c.RoomCode, c.Day, c.TimeRange)
	case ConflictRoomDoubleBook:
		return fmt.Sprintf("double|%s|%s|%s|%s", strings.Join(sortedCodes(c.CourseCodes...), ","), c.RoomCode, c.Day, c.TimeRange)
	case ConflictInstructor:
		return fmt.Sprintf("instructor|%s|%s|%s|%s", c.InstructorID, strings.Join(sortedCodes(c.CourseCodes...), ","), c.Day, c.TimeRange)
	case ConflictTimeSlotExceeded:
		return fmt.Sprintf("timeslot|%s|%s|%s", firstCode(c.CourseCodes), c.Day, c.TimeRange)
	default:
		return fmt.Sprintf("unknown|%s|%s|%s", firstCode(c.CourseCodes), c.Day, c.TimeRange)
	}
}

// FallbackIdentity builds a best-effort identity for persisted conflicts that
// predate structured course-code storage. It uses only the structured fields
// that survived (kind, instructor, room, day, time), accepting a small risk
// of under- or over-matching for those legacy rows.
func FallbackIdentity(kind ConflictKind, instructorID, roomCode, day, timeRange string) string {
	switch kind {
	case ConflictInstructor:
		return fmt.Sprintf("instructor|%s||%s|%s", instructorID, day, timeRange)
	case ConflictTimeSlotExceeded:
		return fmt.Sprintf("timeslot||%s|%s", day, timeRange)
	case ConflictRoomCapacity:
		return fmt.Sprintf("capacity||%s|%s|%s", roomCode, day, timeRange)
	default:
		return fmt.Sprintf("double||%s|%s|%s", roomCode, day, timeRange)
	}
}

func firstCode(codes []string) string {
	if len(codes) == 0 {
		return ""
	}
	return codes[0]
}

// Reconcile compares freshly detected conflicts against the identity set of
// currently active persisted conflicts and returns only the genuinely new
// ones. Conflicts already tracked are left untouched, and conflicts absent
// from the fresh pass are never resubmitted or removed here; retiring those
// is the auto-resolve operation's job. Running Reconcile twice with no grid
// change in between therefore yields nothing on the second run.
func Reconcile(fresh []Conflict, activeIdentities map[string]struct{}, logger *zap.Logger) []Conflict {
	if logger == nil {
		logger = zap.NewNop()
	}
	var out []Conflict
	seen := make(map[string]struct{}, len(fresh))
	for _, c := range fresh {
		id := c.Identity()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, tracked := activeIdentities[id]; tracked {
			continue
		}
		logger.Debug("new conflict detected", zap.String("identity", id), zap.String("kind", string(c.Kind)))
		out = append(out, c)
	}
	return out
}

// StaleIdentities returns the identities of active persisted conflicts that
// no longer reproduce in the fresh detection pass. Auto-resolve marks these
// Resolved; nothing else touches them.
func StaleIdentities(fresh []Conflict, activeIdentities map[string]struct{}) []string {
	current := make(map[string]struct{}, len(fresh))
	for _, c := range fresh {
		current[c.Identity()] = struct{}{}
	}
	var stale []string
	for id := range activeIdentities {
		if _, ok := current[id]; !ok {
			stale = append(stale, id)
		}
	}
	return stale
}
