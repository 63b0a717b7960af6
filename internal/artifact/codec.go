package artifact

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"ModelVault/internal/domain/models"
)

// DecodeBlob wraps an opaque serialized model object. The bytes are kept
// exactly as fetched; only the format is sniffed and a digest computed so
// bundles can be compared and audited without re-reading the backend.
func DecodeBlob(path string, data []byte) (*models.Blob, error) {
	if len(data) == 0 {
		return nil, &models.ArtifactDecodeError{Path: path, Reason: "empty blob"}
	}

	sum := sha256.Sum256(data)
	return &models.Blob{
		Data:   data,
		Format: sniffFormat(data),
		SHA256: hex.EncodeToString(sum[:]),
		Size:   int64(len(data)),
	}, nil
}

// DecodeFeatureNames parses the ordered feature name list.
func DecodeFeatureNames(path string, data []byte) ([]string, error) {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, &models.ArtifactDecodeError{Path: path, Reason: fmt.Sprintf("invalid JSON string array: %v", err)}
	}
	if len(names) == 0 {
		return nil, &models.ArtifactDecodeError{Path: path, Reason: "feature name list is empty"}
	}
	return names, nil
}

// DecodeMetadata parses and validates a model metadata document.
func DecodeMetadata(path string, data []byte) (*models.Metadata, error) {
	var md models.Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, &models.MalformedMetadataError{Path: path, Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}

	if md.Version == "" {
		return nil, &models.MalformedMetadataError{Path: path, Reason: "missing version"}
	}
	if md.Ticker == "" {
		return nil, &models.MalformedMetadataError{Path: path, Reason: "missing ticker"}
	}
	if md.CreatedDate == "" {
		return nil, &models.MalformedMetadataError{Path: path, Reason: "missing created_date"}
	}
	if !validDate(md.CreatedDate) {
		return nil, &models.MalformedMetadataError{Path: path, Reason: fmt.Sprintf("created_date %q is not an ISO date", md.CreatedDate)}
	}
	if md.Accuracy < 0 || md.Accuracy > 1 {
		return nil, &models.MalformedMetadataError{Path: path, Reason: fmt.Sprintf("accuracy %v outside [0,1]", md.Accuracy)}
	}

	return &md, nil
}

func validDate(s string) bool {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05.999999"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func sniffFormat(data []byte) models.BlobFormat {
	switch {
	case data[0] == 0x80: // pickle protocol marker
		return models.FormatPickle
	case len(data) > 1 && data[0] == 0x1f && data[1] == 0x8b:
		return models.FormatGzip
	case data[0] == 0x78:
		return models.FormatZlib
	case bytes.HasPrefix(data, []byte("tree")):
		return models.FormatLGBMText
	default:
		return models.FormatUnknown
	}
}
