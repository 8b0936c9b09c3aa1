package initial

import (
	"context"
	"fmt"
	"strings"

	"BotDesk/internal/config"
	"BotDesk/internal/modules/knowledge/infrastructure/vectordb"
	"BotDesk/pkg/zlog"

	mclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"
)

// NewMilvusClient 未配置地址时返回 nil, nil；会按需建库、建集合和 COSINE 索引
func NewMilvusClient(ctx context.Context, conf config.MilvusConfig) (mclient.Client, error) {
	if strings.TrimSpace(conf.Address) == "" {
		return nil, nil
	}
	cli, err := newMilvusClientAndEnsureSchema(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("milvus init: %w", err)
	}
	zlog.Info("milvus connected", zap.String("addr", conf.Address), zap.String("collection", conf.CollectionName))
	return cli, nil
}

func newMilvusClientAndEnsureSchema(ctx context.Context, conf config.MilvusConfig) (mclient.Client, error) {
	addr := strings.TrimSpace(conf.Address)
	dbName := strings.TrimSpace(conf.DBName)
	collection := strings.TrimSpace(conf.CollectionName)

	if dbName == "" {
		dbName = "botdesk"
	}
	if collection == "" {
		collection = "knowledge_chunk"
	}

	dim := conf.VectorDim
	if dim <= 0 {
		dim = 1536
	}

	defaultCli, err := mclient.NewClient(ctx, mclient.Config{
		Address:  addr,
		Username: strings.TrimSpace(conf.Username),
		Password: strings.TrimSpace(conf.Password),
		DBName:   "default",
	})
	if err != nil {
		return nil, err
	}

	dbs, err := defaultCli.ListDatabases(ctx)
	if err != nil {
		_ = defaultCli.Close()
		return nil, err
	}
	exists := false
	for _, db := range dbs {
		if db.Name == dbName {
			exists = true
			break
		}
	}
	if !exists {
		if err := defaultCli.CreateDatabase(ctx, dbName); err != nil {
			_ = defaultCli.Close()
			return nil, err
		}
	}

	cli, err := mclient.NewClient(ctx, mclient.Config{
		Address:  addr,
		Username: strings.TrimSpace(conf.Username),
		Password: strings.TrimSpace(conf.Password),
		DBName:   dbName,
	})
	if err != nil {
		_ = defaultCli.Close()
		return nil, err
	}

	cols, err := cli.ListCollections(ctx)
	if err != nil {
		_ = defaultCli.Close()
		_ = cli.Close()
		return nil, err
	}
	collExists := false
	for _, c := range cols {
		if c.Name == collection {
			collExists = true
			break
		}
	}

	if !collExists {
		schema := &entity.Schema{
			CollectionName: collection,
			Description:    "BotDesk knowledge chunk vectors",
			Fields: []*entity.Field{
				{
					Name:       vectordb.FieldID,
					DataType:   entity.FieldTypeVarChar,
					PrimaryKey: true,
					TypeParams: map[string]string{"max_length": "128"},
				},
				{
					Name:       vectordb.FieldVector,
					DataType:   entity.FieldTypeFloatVector,
					TypeParams: map[string]string{entity.TypeParamDim: fmt.Sprintf("%d", dim)},
				},
				{
					Name:       vectordb.FieldTenant,
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": "64"},
				},
				{
					Name:       vectordb.FieldDocID,
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": "36"},
				},
				{
					Name:     vectordb.FieldChunkIndex,
					DataType: entity.FieldTypeInt64,
				},
				{
					Name:       vectordb.FieldContent,
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": "16384"},
				},
			},
		}

		if err := cli.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			_ = defaultCli.Close()
			_ = cli.Close()
			return nil, err
		}

		idx, err := entity.NewIndexAUTOINDEX(entity.COSINE)
		if err != nil {
			_ = defaultCli.Close()
			_ = cli.Close()
			return nil, err
		}
		if err := cli.CreateIndex(ctx, collection, vectordb.FieldVector, idx, false); err != nil {
			_ = defaultCli.Close()
			_ = cli.Close()
			return nil, err
		}
	}

	_ = defaultCli.Close()

	_ = cli.LoadCollection(ctx, collection, false)

	return cli, nil
}
