package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"aegis/internal/domain"
)

type kaoSummary struct {
	KAOID             string   `json:"kaoId"`
	KASURL            string   `json:"kasUrl"`
	ClearanceRequired string   `json:"clearanceRequired"`
	COIRequired       []string `json:"coiRequired,omitempty"`
}

type objectSummary struct {
	ObjectID        string       `json:"objectId"`
	ObjectType      string       `json:"objectType"`
	Owner           string       `json:"owner,omitempty"`
	ContentType     string       `json:"contentType"`
	PayloadSize     int64        `json:"payloadSize"`
	CreatedAt       string       `json:"createdAt"`
	Classification  string       `json:"classification"`
	DisplayMarking  string       `json:"displayMarking"`
	ReleasabilityTo []string     `json:"releasabilityTo"`
	COI             []string     `json:"coi,omitempty"`
	COIOperator     string       `json:"coiOperator,omitempty"`
	Caveats         []string     `json:"caveats,omitempty"`
	PolicyVersion   string       `json:"policyVersion"`
	PolicyHash      string       `json:"policyHash,omitempty"`
	PolicySigned    bool         `json:"policySigned"`
	Algorithm       string       `json:"encryptionAlgorithm"`
	PayloadHash     string       `json:"payloadHash,omitempty"`
	Chunks          int          `json:"chunks"`
	ExternalChunks  int          `json:"externalChunks,omitempty"`
	AssertionTypes  []string     `json:"assertionTypes,omitempty"`
	KeyAccess       []kaoSummary `json:"keyAccess"`
}

func runInspect(args []string) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var inPath string
	var outPath string

	fs.StringVar(&inPath, "in", "", "sealed object file")
	fs.StringVar(&outPath, "out", "", "summary output path (default stdout)")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if inPath == "" {
		fmt.Fprintln(os.Stderr, "inspect requires --in")
		return 1
	}

	obj, err := readObject(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	payload, err := json.MarshalIndent(summarize(obj), "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode summary: %v\n", err)
		return 1
	}
	if err := writeOutput(outPath, payload); err != nil {
		fmt.Fprintf(os.Stderr, "write summary: %v\n", err)
		return 1
	}
	return 0
}

func summarize(obj domain.ZTDFObject) objectSummary {
	label := obj.Policy.SecurityLabel
	summary := objectSummary{
		ObjectID:        obj.Manifest.ObjectID,
		ObjectType:      obj.Manifest.ObjectType,
		Owner:           obj.Manifest.Owner,
		ContentType:     obj.Manifest.ContentType,
		PayloadSize:     obj.Manifest.PayloadSize,
		CreatedAt:       obj.Manifest.CreatedAt,
		Classification:  string(label.Classification),
		DisplayMarking:  label.DisplayMarking,
		ReleasabilityTo: label.ReleasabilityTo,
		COI:             label.COI,
		COIOperator:     string(label.COIOperator),
		Caveats:         label.Caveats,
		PolicyVersion:   obj.Policy.PolicyVersion,
		PolicyHash:      obj.Policy.PolicyHash,
		PolicySigned:    obj.Policy.PolicySignature != nil,
		Algorithm:       obj.Payload.EncryptionAlgorithm,
		PayloadHash:     obj.Payload.PayloadHash,
		Chunks:          len(obj.Payload.EncryptedChunks),
	}
	for _, chunk := range obj.Payload.EncryptedChunks {
		if chunk.StorageMode == domain.StorageModeExternal {
			summary.ExternalChunks++
		}
	}
	for _, assertion := range obj.Policy.PolicyAssertions {
		summary.AssertionTypes = append(summary.AssertionTypes, assertion.Type)
	}
	for _, kao := range obj.Payload.KeyAccessObjects {
		summary.KeyAccess = append(summary.KeyAccess, kaoSummary{
			KAOID:             kao.KAOID,
			KASURL:            kao.KASURL,
			ClearanceRequired: string(kao.PolicyBinding.ClearanceRequired),
			COIRequired:       kao.PolicyBinding.COIRequired,
		})
	}
	return summary
}
