package domain

import (
	timerdomain "countdown/internal/modules/timer/domain"
)

func NewPayload(summary timerdomain.Summary) Payload {
	return Payload{
		MeetingID:    summary.MeetingID,
		MeetingTitle: summary.Title,
		MeetingDate:  summary.EndedAt.Format("2006-01-02"),
		SummaryText:  summary.Text(),
	}
}
