package models

// TimestampLayout is the wire format for attendance timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// AttendanceRecord is one recognized occurrence of an identity. The name is
// not a foreign key: records outlive deletion or rename of the identity.
type AttendanceRecord struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"not null;index" json:"name"`
	Timestamp string `gorm:"not null" json:"timestamp"` // YYYY-MM-DD HH:MM:SS
}

// TableName explicitly sets the table name for GORM.
func (AttendanceRecord) TableName() string {
	return "attendance"
}
