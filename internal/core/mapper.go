package core

// Mapper turns raw records into normalized records.
type Mapper struct {
	dict *Dictionary
	norm *Normalizer
}

// NewMapper returns a Mapper. Nil arguments select the defaults.
func NewMapper(dict *Dictionary, norm *Normalizer) *Mapper {
	if dict == nil {
		dict = DefaultDictionary()
	}
	if norm == nil {
		norm = NewNormalizer(NormalizeOptions{})
	}
	return &Mapper{dict: dict, norm: norm}
}

// MapRecord canonicalizes every label and normalizes every value, keeping
// only present values. Labels with no canonical form are dropped. When two
// labels share a canonical name the later value wins.
func (m *Mapper) MapRecord(raw RawRecord) *Record {
	rec := NewRecord()
	for _, f := range raw {
		rec.Set(m.dict.Canonicalize(f.Label), m.norm.Normalize(f.Value))
	}
	return rec
}

// MapRecords maps raws in order and drops empty records. It fails with
// ErrEmptyDataset when no record survives.
func (m *Mapper) MapRecords(raws []RawRecord) (RecordSet, error) {
	rs := make(RecordSet, 0, len(raws))
	for _, raw := range raws {
		rec := m.MapRecord(raw)
		if rec.Len() == 0 {
			continue
		}
		rs = append(rs, rec)
	}

	if len(rs) == 0 {
		return nil, &LoadError{Kind: ErrEmptyDataset, Detail: "every record was empty after normalization"}
	}
	return rs, nil
}
