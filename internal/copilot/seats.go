package copilot

import "time"

// Seat is the dashboard projection of a Copilot seat assignment.
type Seat struct {
	Login              string `json:"login"`
	ID                 int64  `json:"id"`
	Team               string `json:"team"`
	CreatedAt          string `json:"created_at"`
	LastActivityAt     string `json:"last_activity_at"`
	LastActivityEditor string `json:"last_activity_editor"`
	PlanType           string `json:"plan_type"`
}

// SeatsPage is one page of the seat billing API.
type SeatsPage struct {
	TotalSeats int              `json:"total_seats"`
	Seats      []SeatAssignment `json:"seats"`
}

// SeatAssignment is the upstream seat record.
type SeatAssignment struct {
	CreatedAt          string         `json:"created_at"`
	LastActivityAt     *string        `json:"last_activity_at"`
	LastActivityEditor *string        `json:"last_activity_editor"`
	PlanType           string         `json:"plan_type"`
	Assignee           *SeatAssignee  `json:"assignee"`
	AssigningTeam      *AssigningTeam `json:"assigning_team"`
}

// SeatAssignee is the user holding a seat.
type SeatAssignee struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
}

// AssigningTeam is the team through which a seat was granted.
type AssigningTeam struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Seat projects the assignment. Seats whose assignee was removed are
// reported with the login "deprecated" and id 0.
func (a SeatAssignment) Seat() Seat {
	s := Seat{
		Login:     "deprecated",
		CreatedAt: a.CreatedAt,
		PlanType:  a.PlanType,
	}
	if a.Assignee != nil {
		s.Login = a.Assignee.Login
		s.ID = a.Assignee.ID
	}
	if a.AssigningTeam != nil {
		s.Team = a.AssigningTeam.Name
	}
	if a.LastActivityAt != nil {
		s.LastActivityAt = *a.LastActivityAt
	}
	if a.LastActivityEditor != nil {
		s.LastActivityEditor = *a.LastActivityEditor
	}
	return s
}

// Projected projects every assignment on the page.
func (p SeatsPage) Projected() []Seat {
	out := make([]Seat, 0, len(p.Seats))
	for _, a := range p.Seats {
		out = append(out, a.Seat())
	}
	return out
}

// DedupeSeats keeps one seat per user, preferring the most recent activity.
// Missing activity counts as the earliest possible time. Deprecated seats
// (id 0) carry no identity and are all kept. First-seen order is preserved.
func DedupeSeats(seats []Seat) []Seat {
	out := make([]Seat, 0, len(seats))
	index := make(map[int64]int, len(seats))
	for _, s := range seats {
		if s.ID == 0 {
			out = append(out, s)
			continue
		}
		i, seen := index[s.ID]
		if !seen {
			index[s.ID] = len(out)
			out = append(out, s)
			continue
		}
		if activityAfter(s.LastActivityAt, out[i].LastActivityAt) {
			out[i] = s
		}
	}
	return out
}

func activityAfter(a, b string) bool {
	ta, errA := time.Parse(time.RFC3339, a)
	tb, errB := time.Parse(time.RFC3339, b)
	switch {
	case a == "":
		return false
	case b == "":
		return true
	case errA == nil && errB == nil:
		return ta.After(tb)
	default:
		return a > b
	}
}
