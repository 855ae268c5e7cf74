package domain

// Column names of the laptop dataset
const (
	ColCompany      = "Company"
	ColTypeName     = "TypeName"
	ColInches       = "Inches"
	ColRam          = "Ram"
	ColCPURate      = "Cpu Rate"
	ColSSD          = "SSD"
	ColHDD          = "HDD"
	ColFlashStorage = "Flash Storage"
	ColHybrid       = "Hybrid"
	ColPrice        = "Price_euros"
)

// StorageColumns are the nullable storage capacity columns that are
// zero-filled during cleaning.
var StorageColumns = []string{ColSSD, ColHDD, ColFlashStorage, ColHybrid}

// RequiredColumns must all be present in an input file.
var RequiredColumns = []string{
	ColCompany, ColTypeName, ColInches, ColRam, ColCPURate,
	ColSSD, ColHDD, ColFlashStorage, ColHybrid, ColPrice,
}

// Laptop is one cleaned record of the dataset. Columns outside the known
// schema stay in the table and are not mapped here. Company and TypeName
// may be empty and Inches and PriceEuros may be NaN when the source cell
// was missing. The "nonnegative" tag is registered by the cleaner and
// accepts NaN.
type Laptop struct {
	Company      string  `json:"company" db:"company"`
	TypeName     string  `json:"type_name" db:"type_name"`
	Inches       float64 `json:"inches" db:"inches" validate:"nonnegative"`
	RamGB        int     `json:"ram_gb" db:"ram_gb" validate:"min=0"`
	CPURateGHz   float64 `json:"cpu_rate_ghz" db:"cpu_rate_ghz" validate:"min=0"`
	SSD          int     `json:"ssd" db:"ssd" validate:"min=0"`
	HDD          int     `json:"hdd" db:"hdd" validate:"min=0"`
	FlashStorage int     `json:"flash_storage" db:"flash_storage" validate:"min=0"`
	Hybrid       int     `json:"hybrid" db:"hybrid" validate:"min=0"`
	PriceEuros   float64 `json:"price_euros" db:"price_euros" validate:"nonnegative"`
}

// TotalStorage returns the sum of all storage columns in GB
func (l Laptop) TotalStorage() int {
	return l.SSD + l.HDD + l.FlashStorage + l.Hybrid
}
