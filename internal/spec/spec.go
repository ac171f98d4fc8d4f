package spec

type sourceSection struct {
	Kind      string   `yaml:"kind"` // "csv", "xlsx"; chosen from the extension when empty
	Path      string   `yaml:"path"`
	Encoding  string   `yaml:"encoding"`  // auto | utf-8 | latin-1 | windows-1252
	Delimiter string   `yaml:"delimiter"` // single character, "," by default
	Sheet     string   `yaml:"sheet"`
	NAValues  []string `yaml:"na_values"` // cells treated as blank; pandas defaults when unset
}

type transformSection struct {
	GroupingKey string `yaml:"grouping_key"`
	NameField   string `yaml:"name_field"` // "namaLengkap" or "nama"
}

type sinkConfigs struct {
	File struct {
		Dir string `yaml:"dir"`
	} `yaml:"file"`
	Stdout struct {
		Pretty bool `yaml:"pretty"`
	} `yaml:"stdout"`
	// Kafka is the path of a koanf YAML file, relative to the job file.
	Kafka string `yaml:"kafka"`
}

type logSection struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type metricsSection struct {
	// Textfile, when set, receives the run's counters in Prometheus text format.
	Textfile string `yaml:"textfile"`
}

// File is a conversion job: where to read, how to group and where to write.
type File struct {
	SchemaVersion string `yaml:"schema_version"`

	Source    sourceSection    `yaml:"source"`
	Transform transformSection `yaml:"transform"`

	Sinks       []string       `yaml:"sinks"`
	SinkConfigs sinkConfigs    `yaml:"sink_configs"`
	Log         *logSection    `yaml:"log"`
	Metrics     metricsSection `yaml:"metrics"`
}
