package ports

import "context"

// ServerTour is the tour shape the backend returns from /api/tours/today.
type ServerTour struct {
	ID        int64   `json:"id"`
	ZoneID    int64   `json:"zone_id"`
	AdminID   int64   `json:"admin_id"`
	Note      string  `json:"note"`
	TourDate  string  `json:"tour_date"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
	DeletedAt *string `json:"deleted_at"`
}

// VisitUpload is one flattened visit inside the end-tour batch. Optional
// survey fields are sent as empty strings, matching what the backend expects.
type VisitUpload struct {
	Name             string   `json:"name"`
	Lng              string   `json:"lng"`
	Lat              string   `json:"lat"`
	Note             string   `json:"note"`
	Address          string   `json:"address"`
	ServiceType      string   `json:"service_type"`
	Status           string   `json:"status"`
	CoverageRange    string   `json:"coverage_range"`
	DeviceType       string   `json:"device_type"`
	DeviceModel      string   `json:"device_model"`
	SerialNumber     string   `json:"serial_number"`
	AntennaType      string   `json:"antenna_type"`
	AntennaCount     string   `json:"antenna_count"`
	AntennaHeight    string   `json:"antenna_height"`
	AntennaDiameter  string   `json:"antenna_diameter"`
	UsedFrequencies  string   `json:"used_frequencies"`
	FrequencyLicense string   `json:"frequency_license"`
	Bandwidth        string   `json:"bandwidth"`
	Polarity         string   `json:"polarity"`
	ExternalPower    string   `json:"external_power"`
	SystemType       string   `json:"system_type"`
	EntityType       string   `json:"entity_type"`
	IMEI             string   `json:"imei"`
	ProviderCompany  string   `json:"provider_company"`
	Number           string   `json:"number"`
	ClientSignature  string   `json:"client_signature"`
	EmployeeSig      string   `json:"employee_signature"`
	SecuritySig      string   `json:"security_signature"`
	Image            string   `json:"image"`
	Images           []string `json:"images"`
	IDImage          string   `json:"id_image"`
	IDImages         []string `json:"id_images"`
}

// EndTourRequest is the single batch POST body for /api/tours/{id}/end.
type EndTourRequest struct {
	TourID string        `json:"tour_id"`
	Visits []VisitUpload `json:"visits"`
}

type LoginResult struct {
	Token     string
	UserID    int64
	UserName  string
	UserEmail string
}

type Profile struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	SupervisorName string `json:"supervisorName"`
}

// TourAPI is the remote surface the sync coordinator depends on.
type TourAPI interface {
	ToursToday(ctx context.Context) ([]ServerTour, error)
	StartTour(ctx context.Context, tourID string) error
	EndTour(ctx context.Context, req EndTourRequest) error
}

// AccountAPI is the remote surface the account service depends on.
type AccountAPI interface {
	Login(ctx context.Context, email, password string) (LoginResult, error)
	Profile(ctx context.Context) (Profile, error)
	ResetPassword(ctx context.Context, current, next, confirm string) error
}
