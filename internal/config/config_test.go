// internal/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     "5432",
		User:     "postgres",
		Password: "secret",
		Database: "prepaga_digital",
		SSLMode:  "disable",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "host=localhost port=5432")
	assert.Contains(t, dsn, "dbname=prepaga_digital")
	assert.Contains(t, dsn, "sslmode=disable")
	assert.Contains(t, dsn, "application_name=prepaga-digital")
}
