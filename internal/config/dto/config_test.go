package dto

import (
	"testing"
)

func validConfig() ApplicationConfig {
	return ApplicationConfig{
		Application: ApplicationInfo{Name: "xesgen"},
		Storage:     StorageConfig{Backend: "file"},
	}
}

func TestApplicationConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*ApplicationConfig)
		wantErr bool
	}{
		{"valid", func(*ApplicationConfig) {}, false},
		{"missing name", func(c *ApplicationConfig) { c.Application.Name = "" }, true},
		{"missing backend", func(c *ApplicationConfig) { c.Storage.Backend = "" }, true},
		{"bad delimiter", func(c *ApplicationConfig) { c.Input.Delimiter = ";;" }, true},
		{"kafka disabled ignores settings", func(c *ApplicationConfig) { c.Kafka.Topic = "" }, false},
		{"kafka enabled without brokers", func(c *ApplicationConfig) {
			c.Kafka.Enabled = true
			c.Kafka.Topic = "events"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInputConfig_Comma(t *testing.T) {
	tests := []struct {
		delimiter string
		want      rune
		wantErr   bool
	}{
		{"", ',', false},
		{";", ';', false},
		{"|", '|', false},
		{`\t`, '\t', false},
		{"\t", '\t', false},
		{"§", '§', false},
		{`"`, '"', true},
		{"ab", 'a', true},
	}

	for _, tt := range tests {
		t.Run(tt.delimiter, func(t *testing.T) {
			c := InputConfig{Delimiter: tt.delimiter}
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := c.Comma(); got != tt.want {
				t.Errorf("Comma() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKafkaConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  KafkaConfig
		wantErr bool
	}{
		{
			name:   "plaintext",
			config: KafkaConfig{BootstrapServers: []string{"localhost:9092"}, Topic: "events"},
		},
		{
			name: "sasl with credentials",
			config: KafkaConfig{
				BootstrapServers: []string{"localhost:9092"},
				Topic:            "events",
				SecurityProtocol: "SASL_SSL",
				SASLMechanism:    "SCRAM-SHA-512",
				SASLUsername:     "user",
				SASLPassword:     "pass",
			},
		},
		{
			name: "sasl without credentials",
			config: KafkaConfig{
				BootstrapServers: []string{"localhost:9092"},
				Topic:            "events",
				SecurityProtocol: "sasl_ssl",
				SASLMechanism:    "PLAIN",
			},
			wantErr: true,
		},
		{
			name: "msk iam needs region",
			config: KafkaConfig{
				BootstrapServers: []string{"b-1.msk:9098"},
				Topic:            "events",
				SecurityProtocol: "SASL_SSL",
				SASLMechanism:    "AWS_MSK_IAM",
			},
			wantErr: true,
		},
		{
			name: "msk iam with region",
			config: KafkaConfig{
				BootstrapServers: []string{"b-1.msk:9098"},
				Topic:            "events",
				SecurityProtocol: "SASL_SSL",
				SASLMechanism:    "AWS_MSK_IAM",
				Region:           "us-east-1",
			},
		},
		{
			name:    "missing topic",
			config:  KafkaConfig{BootstrapServers: []string{"localhost:9092"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBackendConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		check   func() error
		wantErr bool
	}{
		{"s3 valid", (&S3Config{Bucket: "b", Region: "us-east-1"}).Validate, false},
		{"s3 missing region", (&S3Config{Bucket: "b"}).Validate, true},
		{"azure valid", (&AzureConfig{AccountName: "acct", Container: "logs"}).Validate, false},
		{"azure missing container", (&AzureConfig{AccountName: "acct"}).Validate, true},
		{"gcs valid", (&GCSConfig{Bucket: "b"}).Validate, false},
		{"gcs missing bucket", (&GCSConfig{}).Validate, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.check(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
