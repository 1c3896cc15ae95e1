package config

// DataConfig locates data files. Empty paths select the embedded
// defaults.
type DataConfig struct {
	// VariantsFile replaces the embedded variant table
	VariantsFile string `yaml:"variants_file"`

	// CatalogFile replaces the embedded piece catalog
	CatalogFile string `yaml:"catalog_file"`

	// SnapshotFile is where a session is saved and resumed
	SnapshotFile string `yaml:"snapshot_file"`
}

// NewDataConfig creates a DataConfig with default values.
func NewDataConfig() *DataConfig {
	return &DataConfig{}
}
