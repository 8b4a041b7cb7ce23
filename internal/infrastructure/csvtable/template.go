package csvtable

import (
	"encoding/csv"
	"io"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
)

// TemplateFilename is the suggested download name of the upload template.
const TemplateFilename = "bulk_shipment_template.csv"

var templateExamples = [][]string{
	{"Jane Doe", "403-555-0101", "123 8 Ave SW, Calgary", "T2P 1B3", string(domain.WeightSmall)},
	{"John Smith", "587-555-0144", "45 Main St N, Airdrie", "T4B 0B1", string(domain.WeightMedium)},
	{"Ana Lopez", "403-555-0172", "210 Centre St S, Calgary", "T2G 2B6", string(domain.WeightLarge)},
	{"Wei Chen", "403-555-0189", "88 Rainbow Rd, Chestermere", "T1X 0V2", string(domain.WeightSmall)},
	{"Omar Haddad", "587-555-0110", "15 Elizabeth St, Okotoks", "T1S 1A6", string(domain.WeightOversized)},
	{"Lucie Martin", "403-555-0123", "1000 9 Ave SW, Calgary", "T2P 2Y6", string(domain.WeightMedium)},
	{"Raj Patel", "587-555-0135", "302 1 Ave NE, Airdrie", "T4B 2M3", string(domain.WeightSmall)},
	{"Sara Olsen", "403-555-0166", "77 Kingsview Blvd, Airdrie", "T4A 0A9", string(domain.WeightLarge)},
	{"Tom Becker", "403-555-0198", "530 17 Ave SW, Calgary", "T2S 0B1", string(domain.WeightMedium)},
	{"Mia Rossi", "587-555-0157", "9 Westland Rd, Okotoks", "T1S 1N1", string(domain.WeightSmall)},
}

// WriteTemplate writes the required header followed by enough example rows
// to pass the minimum batch size.
func WriteTemplate(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(domain.RequiredColumns()); err != nil {
		return err
	}
	if err := writer.WriteAll(templateExamples); err != nil {
		return err
	}
	return writer.Error()
}
