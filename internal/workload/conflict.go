// Package workload detects overlapping maintenance assignments so that
// callers can warn about double-booked technicians and assets.
package workload

import "time"

// Order carries the scheduling attributes of a work order relevant to
// conflict detection.
type Order struct {
	ID          string
	AssigneeIDs []string
	AssetID     *string
	Start       time.Time
	Due         *time.Time
}

// ConflictType describes the kind of overlap detected between work orders.
type ConflictType string

const (
	// ConflictTypeAssignee indicates a technician is double-booked.
	ConflictTypeAssignee ConflictType = "assignee"
	// ConflictTypeAsset indicates an asset already has overlapping work scheduled.
	ConflictTypeAsset ConflictType = "asset"
)

// Conflict details an overlapping order relation that callers can surface as a warning.
type Conflict struct {
	WithOrderID string
	Type        ConflictType
	AssigneeID  string
	AssetID     *string
}

// DetectConflicts identifies overlaps between the candidate order and existing
// ones. Orders without a due date are treated as occupying only their start
// instant. The candidate is never compared against itself.
func DetectConflicts(existing []Order, candidate Order) []Conflict {
	var conflicts []Conflict

	candidateAssignees := make(map[string]struct{}, len(candidate.AssigneeIDs))
	for _, id := range candidate.AssigneeIDs {
		if id != "" {
			candidateAssignees[id] = struct{}{}
		}
	}

	for _, other := range existing {
		if other.ID == candidate.ID {
			continue
		}
		if !windowsOverlap(candidate, other) {
			continue
		}

		for _, assignee := range other.AssigneeIDs {
			if _, ok := candidateAssignees[assignee]; ok {
				conflicts = append(conflicts, Conflict{
					WithOrderID: other.ID,
					Type:        ConflictTypeAssignee,
					AssigneeID:  assignee,
				})
			}
		}

		if candidate.AssetID != nil && other.AssetID != nil && *candidate.AssetID == *other.AssetID {
			assetID := *candidate.AssetID
			conflicts = append(conflicts, Conflict{
				WithOrderID: other.ID,
				Type:        ConflictTypeAsset,
				AssetID:     &assetID,
			})
		}
	}

	return conflicts
}

// windowsOverlap treats each order as the closed interval [Start, Due] and
// reports whether the two intervals intersect.
func windowsOverlap(a, b Order) bool {
	aEnd := a.Start
	if a.Due != nil {
		aEnd = *a.Due
	}
	bEnd := b.Start
	if b.Due != nil {
		bEnd = *b.Due
	}
	if aEnd.Before(a.Start) || bEnd.Before(b.Start) {
		return false
	}
	return !a.Start.After(bEnd) && !b.Start.After(aEnd)
}
