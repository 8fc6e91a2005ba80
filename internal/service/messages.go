package service

import (
	"fmt"
	"html"
	"strings"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/notify"
)

// Subjects of the request emails.
const (
	subjectReceived = "Reservation request received"
	subjectApproved = "Reservation request approved"
	subjectRejected = "Reservation request rejected"
)

// wrapEmail adds the greeting and signature every outgoing email shares
// and converts line breaks of body to <br>.
func wrapEmail(name, body string, automatic bool) string {
	if name == "" {
		name = "there"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,<br><br>", html.EscapeString(name))
	b.WriteString(strings.ReplaceAll(html.EscapeString(body), "\n", "<br>"))
	b.WriteString("<br><br>Regards,<br>Venue Booking")
	if automatic {
		b.WriteString("<br><br>---<br>This is an automated message. Please do not reply.")
	}
	return b.String()
}

func requestDetails(v model.RequestView, withPrice bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- Event type: %s\n", v.EventType)
	fmt.Fprintf(&b, "- Dates: %s\n", booking.RequestInterval(v.Request))
	fmt.Fprintf(&b, "- Time: %s\n", v.TimeOfDay)
	fmt.Fprintf(&b, "- Venue: %s\n", v.VenueName)
	fmt.Fprintf(&b, "- Guests: %d\n", v.Guests)
	if withPrice {
		fmt.Fprintf(&b, "- Estimated price: $%.2f\n", v.TotalPrice)
	}
	return b.String()
}

func receivedEmail(v model.RequestView) notify.Email {
	body := fmt.Sprintf("Your request for %q at %q starting %s has been received.\n\nDetails:\n%s\n"+
		"An administrator will review it soon. You will be notified when it is approved or rejected.",
		v.EventType, v.VenueName, v.StartDate.Format(booking.DateLayout), requestDetails(v, true))
	return notify.Email{Kind: model.NotifyRequestReceived, To: v.UserEmail, Subject: subjectReceived, HTML: wrapEmail(v.UserName, body, true)}
}

func receivedNotice(v model.RequestView) string {
	return fmt.Sprintf("Your request for %q at %q has been received and is pending review.", v.EventType, v.VenueName)
}

func approvedEmail(v model.RequestView) notify.Email {
	body := fmt.Sprintf("Good news! Your request has been APPROVED.\n\nBooking details:\n%s\n"+
		"The venue has been reserved for you. Contact the administrator if you need more details.",
		requestDetails(v, true))
	return notify.Email{Kind: model.NotifyRequestApproved, To: v.UserEmail, Subject: subjectApproved, HTML: wrapEmail(v.UserName, body, true)}
}

func approvedNotice(v model.RequestView) string {
	return fmt.Sprintf("Your request for %q at %q has been APPROVED.", v.EventType, v.VenueName)
}

func rejectedEmail(v model.RequestView) notify.Email {
	body := fmt.Sprintf("Unfortunately, your request has been REJECTED.\n\nRequest details:\n%s\n"+
		"You can submit a new request or contact the administrator for more information.",
		requestDetails(v, false))
	return notify.Email{Kind: model.NotifyRequestRejected, To: v.UserEmail, Subject: subjectRejected, HTML: wrapEmail(v.UserName, body, true)}
}

func rejectedNotice(v model.RequestView) string {
	return fmt.Sprintf("Your request for %q at %q has been REJECTED.", v.EventType, v.VenueName)
}

func cascadeEmail(v model.RequestView, reason booking.Reason) notify.Email {
	body := fmt.Sprintf("Unfortunately, your request for %q has been automatically REJECTED.\n\nReason: %s\n\n"+
		"Please look for other available dates.", v.VenueName, reason.Text())
	return notify.Email{Kind: model.NotifyRequestRejected, To: v.UserEmail, Subject: subjectRejected, HTML: wrapEmail(v.UserName, body, true)}
}

func cascadeNotice(v model.RequestView, reason booking.Reason) string {
	return fmt.Sprintf("Your request for %q (starting %s) has been automatically REJECTED because %s",
		v.VenueName, v.StartDate.Format(booking.DateLayout), reason.Text())
}

func reportResolvedNotice(r model.Report) string {
	return fmt.Sprintf("Your report about %q has been RESOLVED.", r.Type)
}

func contactAdminEmail(to string, m model.ContactMessage) notify.Email {
	var b strings.Builder
	b.WriteString("You have received a new contact message.<br><br>")
	fmt.Fprintf(&b, "Name: %s<br>", html.EscapeString(m.Name))
	fmt.Fprintf(&b, "Email: %s<br>", html.EscapeString(m.Email))
	fmt.Fprintf(&b, "Subject: %s<br>", html.EscapeString(m.Subject))
	fmt.Fprintf(&b, "Message:<br>%s<br>", strings.ReplaceAll(html.EscapeString(m.Message), "\n", "<br>"))
	return notify.Email{Kind: "contact_received", To: to, Subject: "New contact message: " + m.Subject, HTML: b.String()}
}

func replyEmail(to, name, subject, message string) notify.Email {
	return notify.Email{Kind: "admin_reply", To: to, Subject: subject, HTML: wrapEmail(name, message, false)}
}
