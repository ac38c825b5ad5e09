package domain

// LegacyRecord is the flat classified-document shape consumed by the
// migrator. Field names match the legacy store verbatim, including the
// uppercase COI key.
type LegacyRecord struct {
	ResourceID       string   `json:"resourceId"`
	Title            string   `json:"title"`
	Classification   string   `json:"classification"`
	ReleasabilityTo  []string `json:"releasabilityTo"`
	COI              []string `json:"COI"`
	Encrypted        bool     `json:"encrypted"`
	Content          string   `json:"content,omitempty"`
	EncryptedContent string   `json:"encryptedContent,omitempty"`
	CreationDate     string   `json:"creationDate,omitempty"`
}
