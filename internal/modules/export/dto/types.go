package dto

type ExporterInfo struct {
	Name    string
	Kind    string
	Version string
	Enabled bool
	Target  string
}

type DoctorResult struct {
	Name            string
	ChecksumValid   bool
	BinaryReachable bool
	LifecycleOK     bool
	Error           string
}

type ExportResult struct {
	Exporter string
	OK       bool
	Error    string
}
