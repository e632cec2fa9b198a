package survey

import "time"

// Visit is one site inspection record collected during a tour. It is
// authoritative locally until uploaded; once the server confirms the upload
// the local row is deleted, never archived.
type Visit struct {
	ID       uint64
	TourID   string
	Name     string
	Lat      string
	Lng      string
	Note     string
	Status   string
	Address  string
	Synced   bool
	Created  string
	Images   []MediaItem
	IDImages []MediaItem

	ServiceType      string
	CoverageRange    string
	DeviceType       string
	DeviceModel      string
	SerialNumber     string
	AntennaType      string
	AntennaCount     string
	AntennaHeight    string
	AntennaDiameter  string
	UsedFrequencies  string
	FrequencyLicense string
	Bandwidth        string
	Polarity         string
	ExternalPower    string
	SystemType       string
	EntityType       string
	IMEI             string
	ProviderCompany  string
	Number           string

	ClientSignature   string
	EmployeeSignature string
	SecuritySignature string
}

// Tour is a scheduled field assignment for a team in a zone/date. Local rows
// are a disposable mirror of server state, replaced wholesale on every fetch.
type Tour struct {
	ID        uint64
	TourID    int64
	AdminID   int64
	ZoneID    int64
	Note      string
	TourDate  string
	StartDate string
	EndDate   string
	CreatedAt string
	UpdatedAt string
	DeletedAt string
}

type TourStatus string

const (
	TourPending    TourStatus = "pending"
	TourInProgress TourStatus = "in-progress"
	TourCompleted  TourStatus = "completed"
)

// Status derives the tour state from its dates. It is a pure function of
// (start_date, end_date, now); nothing is persisted.
func (t Tour) Status(now time.Time) TourStatus {
	if t.EndDate != "" {
		return TourCompleted
	}
	if t.StartDate == "" {
		return TourPending
	}

	start, err := ParseServerTime(t.StartDate)
	if err != nil {
		// A start date the server sent but we cannot read: treat the tour
		// as not yet started rather than guessing it is underway.
		return TourPending
	}
	if start.After(now) {
		return TourPending
	}
	return TourInProgress
}

// serverTimeLayouts covers the timestamp shapes the API emits.
var serverTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func ParseServerTime(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range serverTimeLayouts {
		ts, err := time.Parse(layout, value)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
