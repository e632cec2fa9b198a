package model

// Visit holds one collected site record. Image and IDImage store the media
// lists as JSON text in a single column each, avoiding a join table.
type Visit struct {
	ID               uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	TourID           string  `gorm:"column:tour_id;type:text;not null;index"`
	Name             string  `gorm:"column:name;type:text;not null"`
	Lat              *string `gorm:"column:lat;type:text"`
	Lng              *string `gorm:"column:lng;type:text"`
	Image            *string `gorm:"column:image;type:text"`
	IDImage          *string `gorm:"column:id_image;type:text"`
	Note             *string `gorm:"column:note;type:text"`
	ServiceType      *string `gorm:"column:service_type;type:text"`
	CoverageRange    *string `gorm:"column:coverage_range;type:text"`
	DeviceType       *string `gorm:"column:device_type;type:text"`
	DeviceModel      *string `gorm:"column:device_model;type:text"`
	SerialNumber     *string `gorm:"column:serial_number;type:text"`
	AntennaType      *string `gorm:"column:antenna_type;type:text"`
	AntennaCount     *string `gorm:"column:antenna_count;type:text"`
	AntennaHeight    *string `gorm:"column:antenna_height;type:text"`
	AntennaDiameter  *string `gorm:"column:antenna_diameter;type:text"`
	UsedFrequencies  *string `gorm:"column:used_frequencies;type:text"`
	FrequencyLicense *string `gorm:"column:frequency_license;type:text"`
	Bandwidth        *string `gorm:"column:bandwidth;type:text"`
	Polarity         *string `gorm:"column:polarity;type:text"`
	ExternalPower    *string `gorm:"column:external_power;type:text"`
	ClientSignature  *string `gorm:"column:client_signature;type:text"`
	EmployeeSig      *string `gorm:"column:employee_signature;type:text"`
	SecuritySig      *string `gorm:"column:security_signature;type:text"`
	CreatedAt        string  `gorm:"column:created_at;type:text;not null;index"`
	Status           string  `gorm:"column:status;type:text;not null"`
	Address          *string `gorm:"column:address;type:text"`
	Synced           int     `gorm:"column:synced;not null;default:0;index"`
	SystemType       *string `gorm:"column:system_type;type:text"`
	EntityType       *string `gorm:"column:entity_type;type:text"`
	IMEI             *string `gorm:"column:imei;type:text"`
	ProviderCompany  *string `gorm:"column:provider_company;type:text"`
	Number           *string `gorm:"column:number;type:text"`
}

func (Visit) TableName() string {
	return "visits"
}
