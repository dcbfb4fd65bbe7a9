package deliverables

import "sponsorhub-backend/internal/domain"

// ReduceStatus maps a deliverable's assignment list to a deliverable-level
// status: completed when the list is non-empty and every entry is accepted,
// in_progress otherwise. An empty list is in_progress, never completed.
//
// pending and overdue are set by other flows (creation, due-date sweep); this
// reducer only ever produces in_progress or completed. The cost-submission
// flow bypasses it entirely and force-completes the deliverable.
func ReduceStatus(assignments []domain.Assignment) string {
	if len(assignments) == 0 {
		return domain.DeliverableInProgress
	}
	for _, a := range assignments {
		if a.Status != domain.AssignmentAccepted {
			return domain.DeliverableInProgress
		}
	}
	return domain.DeliverableCompleted
}
