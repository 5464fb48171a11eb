package models

// Counter is a named monotonic sequence, e.g. "demanda_2024".
type Counter struct {
	Name string `gorm:"primaryKey;size:64"`
	Seq  uint64 `gorm:"not null;default:0"`
}

func (Counter) TableName() string {
	return "counters"
}
