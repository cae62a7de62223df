package kafka

import (
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"hash"
	"os"

	"github.com/IBM/sarama"
	"github.com/aws/aws-msk-iam-sasl-signer-go/signer"
	"github.com/xdg-go/scram"
)

// SecurityConfig holds broker authentication and transport settings.
type SecurityConfig struct {
	// Protocol is PLAINTEXT, SSL, SASL_PLAINTEXT or SASL_SSL.
	Protocol string
	// Mechanism is PLAIN, SCRAM-SHA-256, SCRAM-SHA-512 or AWS_MSK_IAM.
	Mechanism string
	Username  string
	Password  string
	// Region is the AWS region used to sign MSK IAM tokens.
	Region string
	TLS    TLSConfig
}

// TLSConfig holds optional certificate settings.
type TLSConfig struct {
	CACertFile         string
	ClientCertFile     string
	ClientKeyFile      string
	InsecureSkipVerify bool
}

func configureSecurity(config *sarama.Config, sec SecurityConfig) error {
	switch sec.Protocol {
	case "", "PLAINTEXT":
		return nil

	case "SASL_PLAINTEXT", "SASL_SSL":
		config.Net.SASL.Enable = true
		if err := configureSASL(config, sec); err != nil {
			return err
		}
		if sec.Protocol == "SASL_SSL" {
			return configureTLS(config, sec.TLS)
		}
		return nil

	case "SSL":
		return configureTLS(config, sec.TLS)

	default:
		return fmt.Errorf("unsupported security protocol: %s", sec.Protocol)
	}
}

func configureSASL(config *sarama.Config, sec SecurityConfig) error {
	switch sec.Mechanism {
	case "PLAIN":
		config.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		config.Net.SASL.User = sec.Username
		config.Net.SASL.Password = sec.Password

	case "SCRAM-SHA-256":
		config.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
		config.Net.SASL.User = sec.Username
		config.Net.SASL.Password = sec.Password
		config.Net.SASL.SCRAMClientGeneratorFunc = scramClientGenerator(SHA256)

	case "SCRAM-SHA-512":
		config.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA512
		config.Net.SASL.User = sec.Username
		config.Net.SASL.Password = sec.Password
		config.Net.SASL.SCRAMClientGeneratorFunc = scramClientGenerator(SHA512)

	case "AWS_MSK_IAM":
		if sec.Region == "" {
			return fmt.Errorf("AWS_MSK_IAM requires a region")
		}
		config.Net.SASL.Mechanism = sarama.SASLTypeOAuth
		config.Net.SASL.TokenProvider = &MSKAccessTokenProvider{region: sec.Region}

	default:
		return fmt.Errorf("unsupported SASL mechanism: %s", sec.Mechanism)
	}

	return nil
}

func configureTLS(config *sarama.Config, cfg TLSConfig) error {
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}

	if cfg.CACertFile != "" {
		caCert, err := os.ReadFile(cfg.CACertFile)
		if err != nil {
			return fmt.Errorf("failed to read CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return fmt.Errorf("failed to parse CA certificate %s", cfg.CACertFile)
		}
		tlsConfig.RootCAs = pool
	}

	if cfg.ClientCertFile != "" && cfg.ClientKeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertFile, cfg.ClientKeyFile)
		if err != nil {
			return fmt.Errorf("failed to load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	config.Net.TLS.Enable = true
	config.Net.TLS.Config = tlsConfig
	return nil
}

// SHA256 and SHA512 are the SCRAM hash generators.
var (
	SHA256 scram.HashGeneratorFcn = func() hash.Hash { return sha256.New() }
	SHA512 scram.HashGeneratorFcn = func() hash.Hash { return sha512.New() }
)

// XDGSCRAMClient implements sarama.SCRAMClient on top of xdg-go/scram.
type XDGSCRAMClient struct {
	*scram.Client
	*scram.ClientConversation
	scram.HashGeneratorFcn
}

var _ sarama.SCRAMClient = (*XDGSCRAMClient)(nil)

func scramClientGenerator(fcn scram.HashGeneratorFcn) func() sarama.SCRAMClient {
	return func() sarama.SCRAMClient {
		return &XDGSCRAMClient{HashGeneratorFcn: fcn}
	}
}

// Begin starts a conversation for the given credentials.
func (x *XDGSCRAMClient) Begin(userName, password, authzID string) (err error) {
	x.Client, err = x.HashGeneratorFcn.NewClient(userName, password, authzID)
	if err != nil {
		return err
	}
	x.ClientConversation = x.Client.NewConversation()
	return nil
}

func (x *XDGSCRAMClient) Step(challenge string) (string, error) {
	return x.ClientConversation.Step(challenge)
}

func (x *XDGSCRAMClient) Done() bool {
	return x.ClientConversation.Done()
}

// MSKAccessTokenProvider implements sarama.AccessTokenProvider for AWS MSK IAM.
type MSKAccessTokenProvider struct {
	region string
}

// Token signs a new token with the default AWS credential chain.
func (m *MSKAccessTokenProvider) Token() (*sarama.AccessToken, error) {
	token, expiryMs, err := signer.GenerateAuthToken(context.Background(), m.region)
	if err != nil {
		return nil, fmt.Errorf("failed to generate MSK IAM token: %w", err)
	}

	return &sarama.AccessToken{
		Token:      token,
		Extensions: map[string]string{"expiry": fmt.Sprintf("%d", expiryMs)},
	}, nil
}
