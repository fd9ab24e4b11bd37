package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"git.fiblab.net/sim/accessroute/model"
	"git.fiblab.net/sim/accessroute/obstacle"
	"go.mongodb.org/mongo-driver/mongo"
)

// Path 障碍物数据来源：本地JSON文件或{db}.{col}
type Path struct {
	File string
	DB   string
	Coll string
}

func NewPath(filePathOrColl string) (*Path, error) {
	// 检查filePathOrColl是否作为文件存在
	if _, err := os.Stat(filePathOrColl); err == nil {
		return &Path{
			File: filePathOrColl,
		}, nil
	}
	dbDotColl := strings.TrimSpace(filePathOrColl)
	if dbDotColl == "" {
		return nil, nil
	}
	splitted := strings.Split(dbDotColl, ".")
	if len(splitted) != 2 {
		return nil, fmt.Errorf("dbDotColl is invalid: %s", dbDotColl)
	}
	return &Path{
		DB:   splitted[0],
		Coll: splitted[1],
	}, nil
}

func (p *Path) String() string {
	if p == nil {
		return "demo"
	}
	if p.File != "" {
		return p.File
	}
	return p.DB + "." + p.Coll
}

// loadObstacles 按来源构建障碍物存储，来源为mongo时同时返回client（由调用方断开）并将上报/核实写回集合
// path为nil时使用内置演示数据
func loadObstacles(ctx context.Context, mongoURI string, path *Path) (*obstacle.Store, *mongo.Client, error) {
	switch {
	case path == nil:
		return obstacle.NewStore(obstacle.DemoObstacles(time.Now())), nil, nil
	case path.File != "":
		obs, err := obstacle.LoadFile(path.File)
		if err != nil {
			return nil, nil, err
		}
		return obstacle.NewStore(obs), nil, nil
	default:
		if mongoURI == "" {
			return nil, nil, fmt.Errorf("mongo uri is required for obstacle collection %s", path)
		}
		client, err := obstacle.Connect(ctx, mongoURI)
		if err != nil {
			return nil, nil, err
		}
		src := obstacle.NewMongoSource(client.Database(path.DB).Collection(path.Coll))
		obs, err := src.Load(ctx)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		if obs == nil {
			obs = []model.Obstacle{}
		}
		return obstacle.NewStore(obs, obstacle.WithSink(src)), client, nil
	}
}
