package config

import (
	"github.com/kelseyhightower/envconfig"

	pkgtls "github.com/stockpass/ticket-service/pkg/tls"
)

type Config struct {
	Port             string `envconfig:"PORT" default:"8080"`
	AWSRegion        string `envconfig:"AWS_REGION" default:"ap-northeast-2"`
	ProductTableName string `envconfig:"PRODUCT_TABLE_NAME" default:"products-table"`
	TicketTableName  string `envconfig:"TICKET_TABLE_NAME" default:"tickets-table"`
	StatusTableName  string `envconfig:"STATUS_TABLE_NAME" default:"status-checks-table"`
	KafkaBrokers     string `envconfig:"KAFKA_BROKERS" default:""`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
	LocalMode        bool   `envconfig:"LOCAL_MODE" default:"true"` // run against DynamoDB Local without AWS credentials
	DynamoEndpoint   string `envconfig:"DYNAMO_ENDPOINT" default:""`

	TLS pkgtls.TLSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
