package models

import "time"

// DisabilityProfile is the inclusive-employment profile for a user
type DisabilityProfile struct {
	ID             string    `json:"id"`
	UserEmail      string    `json:"user_email"`
	Name           string    `json:"name"`
	IDProof        string    `json:"id_proof,omitempty"`
	Profession     string    `json:"profession"`
	DisabilityType string    `json:"disability_type"`
	Skills         []string  `json:"skills"`
	TotalEarnings  float64   `json:"total_earnings"`
	CreatedAt      time.Time `json:"created_at"`
}

// DisabilityJob is an inclusive job posting. Payout is escrow-style:
// the worker marks it completed, money moves only on a separate approval.
type DisabilityJob struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Company        string     `json:"company"`
	Description    string     `json:"description,omitempty"`
	RequiredSkills []string   `json:"required_skills"`
	Pay            float64    `json:"pay"`
	Profession     string     `json:"profession,omitempty"`
	Status         JobStatus  `json:"status"`
	AcceptedBy     string     `json:"accepted_by,omitempty"`
	AcceptedAt     *time.Time `json:"accepted_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`

	// Match annotations, computed per requesting profile, never stored
	SkillMatchCount   int  `json:"skill_match_count"`
	IsProfessionMatch bool `json:"is_profession_match"`
	MatchScore        int  `json:"match_score"`
}

// Annotate computes match quality against a seeker's skills and profession.
// Profession match dominates: it is worth 10 points, each matched skill one.
func (j *DisabilityJob) Annotate(skills []string, profession string) {
	have := make(map[string]bool, len(skills))
	for _, s := range skills {
		have[s] = true
	}

	j.SkillMatchCount = 0
	for _, s := range j.RequiredSkills {
		if have[s] {
			j.SkillMatchCount++
		}
	}

	j.IsProfessionMatch = j.Profession != "" && j.Profession == profession

	j.MatchScore = j.SkillMatchCount
	if j.IsProfessionMatch {
		j.MatchScore += 10
	}
}

// DisabilityRegisterRequest creates or refreshes the profile
type DisabilityRegisterRequest struct {
	UserEmail      string   `json:"user_email"`
	Name           string   `json:"name"`
	IDProof        string   `json:"id_proof,omitempty"`
	Profession     string   `json:"profession"`
	DisabilityType string   `json:"disability_type"`
	Skills         []string `json:"skills"`
}

// PostDisabilityJobRequest creates an inclusive job posting
type PostDisabilityJobRequest struct {
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Description    string   `json:"description,omitempty"`
	RequiredSkills []string `json:"required_skills"`
	Pay            float64  `json:"pay"`
	Profession     string   `json:"profession,omitempty"`
}

// JobActionRequest identifies a job and the acting worker for
// accept/complete/approve transitions
type JobActionRequest struct {
	UserEmail string `json:"user_email"`
	JobID     string `json:"job_id"`
}

// DisabilityRevenue is the profile plus payouts still held in escrow
type DisabilityRevenue struct {
	DisabilityProfile
	PendingEarnings float64 `json:"pending_earnings"`
}
