package domain

type COIOperator string

const (
	COIOperatorAll COIOperator = "ALL"
	COIOperatorAny COIOperator = "ANY"
)

const (
	AlgorithmAES256GCM = "AES-256-GCM"

	StorageModeInline   = "inline"
	StorageModeExternal = "external"

	SignatureTypeNone = "none"
	SignatureTypeX509 = "x509"
	SignatureTypeHMAC = "hmac"

	PolicyVersionDefault = "1.0"

	// DefaultKeyAccessURL fills kasUrl when no release service is
	// configured. The reserved .invalid TLD never resolves.
	DefaultKeyAccessURL = "https://kas.invalid"
)

// PlaceholderHash marks synthetic fixtures whose bindings were never
// computed. The validator honors it only when constructed with the
// test-bypass option.
const PlaceholderHash = "placeholder-hash"

type Manifest struct {
	ObjectID           string `json:"objectId"`
	Version            string `json:"version"`
	ObjectType         string `json:"objectType"`
	Owner              string `json:"owner"`
	OwningOrganization string `json:"owningOrganization,omitempty"`
	ContentType        string `json:"contentType"`
	PayloadSize        int64  `json:"payloadSize"`
	CreatedAt          string `json:"createdAt"`
	ModifiedAt         string `json:"modifiedAt"`
}

// Timestamp fields throughout the wire model are RFC 3339 strings rather
// than time.Time: several of them sit inside hashed views, and foreign
// producers' formatting must survive a parse/re-hash round trip untouched.
type SecurityLabel struct {
	Classification     Classification `json:"classification"`
	ReleasabilityTo    []string       `json:"releasabilityTo"`
	COI                []string       `json:"coi,omitempty"`
	COIOperator        COIOperator    `json:"coiOperator,omitempty"`
	Caveats            []string       `json:"caveats,omitempty"`
	OriginatingCountry string         `json:"originatingCountry"`
	CreationDate       string         `json:"creationDate"`
	DisplayMarking     string         `json:"displayMarking"`
}

type Assertion struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

type PolicySignature struct {
	Algorithm string `json:"algorithm"`
	KeyID     string `json:"keyId,omitempty"`
	Value     string `json:"value"`
}

type Policy struct {
	SecurityLabel    SecurityLabel    `json:"securityLabel"`
	PolicyAssertions []Assertion      `json:"policyAssertions"`
	PolicyVersion    string           `json:"policyVersion"`
	PolicyHash       string           `json:"policyHash,omitempty"`
	PolicySignature  *PolicySignature `json:"policySignature,omitempty"`
}

// PolicyBinding is the authorization snapshot a key-release service
// re-checks before unwrapping. It duplicates label fields on purpose:
// the KAO must stay meaningful when detached from the object.
type PolicyBinding struct {
	ClearanceRequired Classification `json:"clearanceRequired"`
	AllowedCountries  []string       `json:"allowedCountries"`
	COIRequired       []string       `json:"coiRequired,omitempty"`
}

type KeyAccessObject struct {
	KAOID             string        `json:"kaoId"`
	KASURL            string        `json:"kasUrl"`
	KASID             string        `json:"kasId,omitempty"`
	WrappedKey        string        `json:"wrappedKey"`
	WrappingAlgorithm string        `json:"wrappingAlgorithm"`
	PolicyBinding     PolicyBinding `json:"policyBinding"`
	CreatedAt         string        `json:"createdAt"`
}

type EncryptedChunk struct {
	ChunkIndex    int    `json:"chunkIndex"`
	Ciphertext    string `json:"ciphertext,omitempty"`
	StorageMode   string `json:"storageMode"`
	Size          int64  `json:"size"`
	IntegrityHash string `json:"integrityHash,omitempty"`
}

type Payload struct {
	EncryptionAlgorithm string            `json:"encryptionAlgorithm"`
	IV                  string            `json:"iv"`
	AuthTag             string            `json:"authTag"`
	KeyAccessObjects    []KeyAccessObject `json:"keyAccessObjects"`
	EncryptedChunks     []EncryptedChunk  `json:"encryptedChunks"`
	PayloadHash         string            `json:"payloadHash,omitempty"`
}

type ZTDFObject struct {
	Manifest Manifest `json:"manifest"`
	Policy   Policy   `json:"policy"`
	Payload  Payload  `json:"payload"`
}
