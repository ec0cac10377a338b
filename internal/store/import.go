package store

import (
	"encoding/json"
	"fmt"

	"github.com/Ayash-Bera/student-lookup/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// Rejected is a document from an export that does not decode as a student record.
type Rejected struct {
	Index int
	Err   error
}

// DecodeExport parses a JSON array of Extended JSON documents, as written by
// mongoexport --jsonArray or Compass. Documents are kept in their original
// shape for insertion; ones that would not decode as a StudentRecord are
// returned as rejected and left out.
func DecodeExport(data []byte) ([]interface{}, []Rejected, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, nil, fmt.Errorf("export must be a JSON array of documents: %w", err)
	}

	docs := make([]interface{}, 0, len(raws))
	var rejected []Rejected
	for i, raw := range raws {
		var doc bson.D
		if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
			rejected = append(rejected, Rejected{Index: i, Err: err})
			continue
		}
		if err := checkRecord(doc); err != nil {
			rejected = append(rejected, Rejected{Index: i, Err: err})
			continue
		}
		docs = append(docs, doc)
	}
	return docs, rejected, nil
}

func checkRecord(doc bson.D) error {
	b, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	var rec models.StudentRecord
	return bson.Unmarshal(b, &rec)
}
