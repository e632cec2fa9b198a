package sync

import (
	"fieldtour/internal/domain/survey"
	"fieldtour/internal/ports"
)

// buildUploadBatch flattens unsynced visits into the single end-tour POST
// body. Input order is preserved: callers pass visits already sorted by
// ascending created_at, and the returned ids match the batch exactly.
func buildUploadBatch(visits []survey.Visit) ([]uint64, []ports.VisitUpload) {
	ids := make([]uint64, 0, len(visits))
	uploads := make([]ports.VisitUpload, 0, len(visits))

	for _, visit := range visits {
		images := mediaPayloads(visit.Images)
		idImages := mediaPayloads(visit.IDImages)

		uploads = append(uploads, ports.VisitUpload{
			Name:             visit.Name,
			Lng:              visit.Lng,
			Lat:              visit.Lat,
			Note:             visit.Note,
			Address:          visit.Lat + ", " + visit.Lng,
			ServiceType:      visit.ServiceType,
			Status:           visit.Status,
			CoverageRange:    visit.CoverageRange,
			DeviceType:       visit.DeviceType,
			DeviceModel:      visit.DeviceModel,
			SerialNumber:     visit.SerialNumber,
			AntennaType:      visit.AntennaType,
			AntennaCount:     visit.AntennaCount,
			AntennaHeight:    visit.AntennaHeight,
			AntennaDiameter:  visit.AntennaDiameter,
			UsedFrequencies:  visit.UsedFrequencies,
			FrequencyLicense: visit.FrequencyLicense,
			Bandwidth:        visit.Bandwidth,
			Polarity:         visit.Polarity,
			ExternalPower:    visit.ExternalPower,
			SystemType:       visit.SystemType,
			EntityType:       visit.EntityType,
			IMEI:             visit.IMEI,
			ProviderCompany:  visit.ProviderCompany,
			Number:           visit.Number,
			ClientSignature:  survey.CompressSignature(visit.ClientSignature),
			EmployeeSig:      survey.CompressSignature(visit.EmployeeSignature),
			SecuritySig:      survey.CompressSignature(visit.SecuritySignature),
			Image:            first(images),
			Images:           images,
			IDImage:          first(idImages),
			IDImages:         idImages,
		})
		ids = append(ids, visit.ID)
	}

	return ids, uploads
}

func mediaPayloads(items []survey.MediaItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Base64)
	}
	return out
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
