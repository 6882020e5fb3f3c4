package outbox

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// Appointment lifecycle events consumed by the reminder service.
const (
	EventAppointmentCreated   = "booking.appointment.created.v1"
	EventAppointmentConfirmed = "booking.appointment.confirmed.v1"
	EventAppointmentCompleted = "booking.appointment.completed.v1"
	EventAppointmentCancelled = "booking.appointment.cancelled.v1"
)

func EventTypeForStatus(status string) string {
	switch status {
	case "confirmed":
		return EventAppointmentConfirmed
	case "completed":
		return EventAppointmentCompleted
	case "cancelled":
		return EventAppointmentCancelled
	}
	return ""
}
