package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/wrapped-story/internal/config"
)

func TestDSN(t *testing.T) {
	c := config.DBConfig{User: "story", Host: "db", Port: "3306", Name: "wrapped"}
	assert.Equal(t, "story@tcp(db:3306)/wrapped?charset=utf8mb4&parseTime=true&loc=UTC", DSN(c))

	c.Pass = "s3cret"
	assert.Equal(t, "story:s3cret@tcp(db:3306)/wrapped?charset=utf8mb4&parseTime=true&loc=UTC", DSN(c))
}
