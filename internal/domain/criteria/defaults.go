package criteria

import "github.com/shopspring/decimal"

// Defaults is the stock catalog installed when the criteria table is empty.
// Eight criteria apply to everyone; the two leadership criteria only enter a
// questionnaire when the evaluated employee holds a leadership designation.
func Defaults() []Criterion {
	one := decimal.NewFromInt(1)
	return []Criterion{
		{
			Name:        "Deadlines and Goals",
			Description: "Completes activities within the agreed deadlines and reaches the proposed goals.",
			Category:    "Performance",
			Audience:    AudienceManager,
			Weight:      one,
			Active:      true,
		},
		{
			Name:        "Commitment",
			Description: "Shows effort toward individual, team and company results.",
			Category:    "Behavior",
			Audience:    AudienceManager,
			Weight:      one,
			Active:      true,
		},
		{
			Name:        "Autonomy and Proactivity",
			Description: "Carries out daily tasks without needing intervention from leadership.",
			Category:    "Behavior",
			Audience:    AudienceManager,
			Weight:      one,
			Active:      true,
		},
		{
			Name:        "Communication and Collaboration",
			Description: "Communicates clearly, thinks collectively and maintains good relationships with colleagues.",
			Category:    "Interpersonal Skills",
			Audience:    AudienceManager,
			Weight:      one,
			Active:      true,
		},
		{
			Name:        "Knowledge of Activities",
			Description: "Masters the activities performed and shares good ideas and technical knowledge with the team.",
			Category:    "Technical Skills",
			Audience:    AudienceManager,
			Weight:      one,
			Active:      true,
		},
		{
			Name:        "Problem Solving",
			Description: "Solves routine problems creatively and proposes solutions for leadership decisions when needed.",
			Category:    "Technical Skills",
			Audience:    AudienceManager,
			Weight:      one,
			Active:      true,
		},
		{
			Name:        "Emotional Intelligence and Conflict Resolution",
			Description: "Handles conflict well, staying balanced through adversity.",
			Category:    "Interpersonal Skills",
			Audience:    AudienceManager,
			Weight:      one,
			Active:      true,
		},
		{
			Name:        "Innovation",
			Description: "Innovates in strategy and proposes ideas that add value to team and company results.",
			Category:    "Behavior",
			Audience:    AudienceManager,
			Weight:      one,
			Active:      true,
		},
		{
			Name:        "Leadership - Delegation",
			Description: "Delegates activities, defining and tracking deadlines for execution.",
			Category:    "Leadership",
			Audience:    AudienceManager,
			LeadersOnly: true,
			Weight:      one,
			Active:      true,
		},
		{
			Name:        "Leadership - Feedback and Team Development",
			Description: "Provides constant feedback, identifying improvement points and presenting tools and strategies.",
			Category:    "Leadership",
			Audience:    AudienceManager,
			LeadersOnly: true,
			Weight:      one,
			Active:      true,
		},
	}
}
