package models

import "math"

// Face represents an enrolled identity: a unique name plus the embedding
// vector computed at enrollment time. It corresponds to the 'faces' table.
type Face struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"uniqueIndex;not null" json:"name"`
	Embedding []byte `gorm:"not null;column:embedding" json:"-"` // float32 vector as BLOB, little-endian
}

// TableName explicitly sets the table name for GORM.
func (Face) TableName() string {
	return "faces"
}

// GetEmbedding converts the BLOB data to []float32
func (f *Face) GetEmbedding() []float32 {
	if len(f.Embedding) == 0 {
		return nil
	}

	embedding := make([]float32, len(f.Embedding)/4) // 4 bytes per float32
	for i := 0; i < len(embedding); i++ {
		offset := i * 4
		bits := uint32(f.Embedding[offset]) |
			uint32(f.Embedding[offset+1])<<8 |
			uint32(f.Embedding[offset+2])<<16 |
			uint32(f.Embedding[offset+3])<<24
		embedding[i] = math.Float32frombits(bits)
	}
	return embedding
}

// SetEmbedding converts []float32 to BLOB data
func (f *Face) SetEmbedding(embedding []float32) {
	if len(embedding) == 0 {
		f.Embedding = nil
		return
	}

	f.Embedding = make([]byte, len(embedding)*4) // 4 bytes per float32
	for i, val := range embedding {
		offset := i * 4
		bits := math.Float32bits(val)
		f.Embedding[offset] = byte(bits)
		f.Embedding[offset+1] = byte(bits >> 8)
		f.Embedding[offset+2] = byte(bits >> 16)
		f.Embedding[offset+3] = byte(bits >> 24)
	}
}
