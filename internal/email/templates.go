package email

import (
	"fmt"
	"strings"
)

type Message struct {
	Subject string
	Body    string
}

// BookingDetails describes one court booking for member-facing mail.
type BookingDetails struct {
	ClubName   string
	MemberName string
	CourtName  string
	Date       string
	TimeRange  string
	Amount     string
}

func BuildBookingReminder(details BookingDetails) Message {
	subject := fmt.Sprintf("Reminder: %s tomorrow at %s", details.CourtName, startOf(details.TimeRange))
	return Message{
		Subject: subject,
		Body: buildBody(details, []string{
			"This is a reminder of your court booking tomorrow.",
		}),
	}
}

func BuildBookingConfirmation(details BookingDetails) Message {
	lines := []string{"Your court booking is confirmed."}
	if details.Amount != "" {
		lines = append(lines, fmt.Sprintf("Amount charged to your wallet: %s", details.Amount))
	}
	return Message{
		Subject: fmt.Sprintf("Booking confirmed: %s on %s", details.CourtName, details.Date),
		Body:    buildBody(details, lines),
	}
}

func BuildBookingCancellation(details BookingDetails) Message {
	lines := []string{"Your court booking has been cancelled."}
	if details.Amount != "" {
		lines = append(lines, fmt.Sprintf("Refunded to your wallet: %s", details.Amount))
	}
	return Message{
		Subject: fmt.Sprintf("Booking cancelled: %s on %s", details.CourtName, details.Date),
		Body:    buildBody(details, lines),
	}
}

func buildBody(details BookingDetails, intro []string) string {
	var b strings.Builder
	if name := strings.TrimSpace(details.MemberName); name != "" {
		fmt.Fprintf(&b, "Hi %s,\n\n", name)
	}
	for _, line := range intro {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Court: %s\n", details.CourtName)
	fmt.Fprintf(&b, "Date: %s\n", details.Date)
	fmt.Fprintf(&b, "Time: %s\n", details.TimeRange)
	if club := strings.TrimSpace(details.ClubName); club != "" {
		fmt.Fprintf(&b, "\n%s\n", club)
	}
	return b.String()
}

func startOf(timeRange string) string {
	start, _, _ := strings.Cut(timeRange, " - ")
	return strings.TrimSpace(start)
}
