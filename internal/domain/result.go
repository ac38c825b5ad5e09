package domain

// ValidationResult is the aggregate verdict for one validation pass.
// Warnings never block Valid; any entry in Errors does.
type ValidationResult struct {
	Valid            bool     `json:"valid"`
	Errors           []string `json:"errors"`
	Warnings         []string `json:"warnings"`
	PolicyHashValid  bool     `json:"policyHashValid"`
	PayloadHashValid bool     `json:"payloadHashValid"`
	ChunkHashesValid []bool   `json:"chunkHashesValid"`
	AllChunksValid   bool     `json:"allChunksValid"`
	Issues           []string `json:"issues"`
}

type SignatureVerification struct {
	Valid           bool              `json:"valid"`
	SignatureType   string            `json:"signatureType"`
	Error           string            `json:"error,omitempty"`
	CertificateInfo map[string]string `json:"certificateInfo,omitempty"`
}

// EncryptResult carries one authenticated encryption. Every field is
// base64. Key is the raw data encryption key; callers wrap or discard
// it, it never lands in a stored object as-is.
type EncryptResult struct {
	Ciphertext string `json:"ciphertext"`
	IV         string `json:"iv"`
	AuthTag    string `json:"authTag"`
	Key        string `json:"key"`
}
