package dynamo

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

const (
	// gsi1 indexes every credential row under one partition so profiles can
	// be listed without a scan.
	gsi1 = "GSI1"

	defaultCallTimeout = time.Second
)

// DB keeps saved credentials in a single table, one row per profile.
type DB struct {
	client      *dynamodb.Client
	table       string
	callTimeout time.Duration
}

type Option func(*DB)

// WithCallTimeout bounds every single dynamo call made through the DB.
func WithCallTimeout(d time.Duration) Option {
	return func(db *DB) {
		db.callTimeout = d
	}
}

func NewDB(client *dynamodb.Client, table string, opts ...Option) *DB {
	db := &DB{
		client:      client,
		table:       table,
		callTimeout: defaultCallTimeout,
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

func (d *DB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.callTimeout)
}

// versionCondition guards the write of a row at version. Version 1 may only
// create the row, later versions must directly follow the stored one.
func versionCondition(version int) expression.ConditionBuilder {
	if version <= 1 {
		return expression.Name("PK").AttributeNotExists()
	}
	return expression.Name("PK").AttributeExists().
		And(expression.Name("Version").Equal(expression.Value(version - 1)))
}

func mustBuild(builder expression.Builder) expression.Expression {
	expr, err := builder.Build()
	if err != nil {
		panic("failed to build dynamo expression: " + err.Error())
	}
	return expr
}
