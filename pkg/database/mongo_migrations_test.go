package database

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestMigratorUp(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("fresh database runs every migration", func(mt *mtest.T) {
		ns := mt.DB.Name() + ".migrations"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		for range getMigrations() {
			mt.AddMockResponses(
				mtest.CreateSuccessResponse(),
				mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			)
		}

		require.NoError(mt, NewMigrator(mt.DB, quietLogger()).Up())
	})

	mt.Run("applied migrations are skipped", func(mt *mtest.T) {
		ns := mt.DB.Name() + ".migrations"
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "version", Value: 2}}),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		require.NoError(mt, NewMigrator(mt.DB, quietLogger()).Up())
	})

	mt.Run("index failure stops the run", func(mt *mtest.T) {
		ns := mt.DB.Name() + ".migrations"
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 85, Message: "index options conflict"}),
		)

		err := NewMigrator(mt.DB, quietLogger()).Up()
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "migration 1 failed")
	})
}

func TestMigratorVersion(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("reads stored version", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".migrations", mtest.FirstBatch,
			bson.D{{Key: "version", Value: 3}}))

		version, err := NewMigrator(mt.DB, quietLogger()).Version()
		require.NoError(mt, err)
		assert.Equal(mt, 3, version)
	})
}
