package store

import "time"

// OpenClockOut is the sentinel stored in time_stamps.clock_out while a
// session is still running.
const OpenClockOut = -1

type Client struct {
	ID          int64
	Name        string
	Description string
}

type Service struct {
	ID          int64
	Name        string
	Description string
	Rate        float64 // hourly
}

// ClientService scopes a client's relationship to a service. A row exists
// once the client has clocked in under that service at least once.
type ClientService struct {
	ID        int64
	ClientID  int64
	ServiceID int64
}

type Contact struct {
	ID        int64
	FirstName string
	LastName  string
	Number    string
	Email     string
}

// PickedContact is what an external contact source hands back. Only the
// first phone number and email are kept; the rest are discarded.
type PickedContact struct {
	FirstName    string
	LastName     string
	PhoneNumbers []string
	Emails       []string
}

// TimeStamp is one work session. ClockIn/ClockOut are epoch millis;
// ClockOut holds OpenClockOut while the session is running.
type TimeStamp struct {
	ID              int64
	ClientServiceID int64
	ClockIn         int64
	ClockOut        int64
	Description     string
}

func (t TimeStamp) Open() bool {
	return t.ClockOut == OpenClockOut
}

// HoursWorked is (clock_out - clock_in) in hours, using the current time
// for a still-open session.
func (t TimeStamp) HoursWorked() float64 {
	end := t.ClockOut
	if t.Open() {
		end = time.Now().UnixMilli()
	}
	return float64(end-t.ClockIn) / 3_600_000.0
}

// WorkSession is a time stamp resolved with its client and service.
// Earned income is always computed from the service's current rate, so a
// rate edit re-prices past sessions on redisplay.
type WorkSession struct {
	TimeStamp
	ClientID    int64
	ClientName  string
	ServiceID   int64
	ServiceName string
	Rate        float64
}

func (w WorkSession) EarnedIncome() float64 {
	return w.HoursWorked() * w.Rate
}

// ClientEarnings is total earned income over a client's closed sessions.
type ClientEarnings struct {
	ClientID     int64
	ClientName   string
	TotalHours   float64
	TotalEarned  float64
	SessionCount int
}
