package main

import (
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.fiblab.net/sim/accessroute/router"
	"github.com/sirupsen/logrus"
	easy "github.com/t-tomalak/logrus-easy-formatter"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

var (
	defaultConfig = router.DefaultConfig()

	// 配置信息
	mongoURI        = flag.String("mongo_uri", "", "mongo db uri (env MONGO_URI)")
	obstaclePathStr = flag.String("obstacles", "", "obstacle json file or database and collection, empty means demo obstacles [format: {fspath} or {db}.{col}]")
	grpcEndpoint    = flag.String("listen", "localhost:52101", "connect listening address")
	logLevel        = flag.String("log-level", "info", "log level [debug, info, warn, error, fatal, panic]")
	mapboxToken     = flag.String("mapbox-token", "", "mapbox access token (env MAPBOX_API_KEY), empty disables the mapbox stage")
	mapboxURL       = flag.String("mapbox-url", "", "mapbox directions base url")
	osrmURL         = flag.String("osrm-url", "", "osrm route base url")
	overpassURL     = flag.String("overpass-url", "", "overpass interpreter url")
	stages          = flag.String("stages", "", "comma separated routing stages, empty means all [mapbox, osrm, road_network, grid_network, grid_fallback]")
	mapboxTimeout   = flag.Duration("timeout.mapbox", defaultConfig.MapboxTimeout, "mapbox stage timeout")
	osrmTimeout     = flag.Duration("timeout.osrm", defaultConfig.OSRMTimeout, "osrm stage timeout")
	roadTimeout     = flag.Duration("timeout.road_network", defaultConfig.RoadNetworkTimeout, "road network stage timeout")
	gridTimeout     = flag.Duration("timeout.grid_network", defaultConfig.GridNetworkTimeout, "grid network stage timeout")
	fallbackTimeout = flag.Duration("timeout.grid_fallback", defaultConfig.GridFallbackTimeout, "grid fallback stage timeout")
	requestTimeout  = flag.Duration("timeout.request", defaultConfig.RequestTimeout, "request timeout, must exceed the sum of stage timeouts")
	cacheSize       = flag.Int("cache.size", defaultConfig.CacheSize, "route cache size (0 disables the cache)")
	cacheTTL        = flag.Duration("cache.ttl", defaultConfig.CacheTTL, "route cache ttl")
	corridorRadius  = flag.Float64("corridor", defaultConfig.CorridorRadius, "obstacle corridor radius along the route (m)")

	// 性能测试
	benchmark = flag.Bool("benchmark", false, "benchmark mode")
	pprofAddr = flag.String("pprof", "localhost:52102", "pprof listening address")

	LOG_LEVELS = map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"fatal": logrus.FatalLevel,
		"panic": logrus.PanicLevel,
	}
)

// routerConfig 命令行参数与环境变量组装路由配置
func routerConfig() router.Config {
	cfg := router.DefaultConfig()
	cfg.MapboxToken = orEnv(*mapboxToken, "MAPBOX_API_KEY")
	cfg.MapboxURL = *mapboxURL
	cfg.OSRMURL = *osrmURL
	cfg.OverpassURL = *overpassURL
	if list := splitList(*stages); len(list) > 0 {
		cfg.Stages = list
	}
	cfg.MapboxTimeout = *mapboxTimeout
	cfg.OSRMTimeout = *osrmTimeout
	cfg.RoadNetworkTimeout = *roadTimeout
	cfg.GridNetworkTimeout = *gridTimeout
	cfg.GridFallbackTimeout = *fallbackTimeout
	cfg.RequestTimeout = *requestTimeout
	cfg.CacheSize = *cacheSize
	cfg.CacheTTL = *cacheTTL
	cfg.CorridorRadius = *corridorRadius
	return cfg
}

func main() {
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	flag.Parse()
	if level, ok := LOG_LEVELS[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		logrus.Fatalf("invalid log level: %s", *logLevel)
	}
	loadEnv()

	obstaclePath, err := NewPath(*obstaclePathStr)
	if err != nil {
		logrus.Fatalf("invalid obstacle path: %s", err)
	}
	cfg := routerConfig()
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid config: %s", err)
	}
	// 启动导航服务
	server := NewRoutingServer(
		orEnv(*mongoURI, "MONGO_URI"),
		obstaclePath,
		cfg,
	)

	var debugger *http.Server
	if *pprofAddr != "" {
		// 启动pprof
		debugger = startHTTPDebugger(*pprofAddr)
	}

	if *benchmark {
		// 性能测试
		runBenchmark(server)
		return
	}

	// 启动tcp监听和初始化connect服务端
	mux := http.NewServeMux()
	mux.Handle(NewRoutingServiceHandler(server))

	addr := *grpcEndpoint
	// 使用HTTP/2 w.o. TLS
	s := &http.Server{
		Addr:    addr,
		Handler: h2c.NewHandler(mux, &http2.Server{}),
	}

	// 优雅退出
	// 创建监听退出chan
	signalCh := make(chan os.Signal, 1)
	//监听指定信号 ctrl+c kill
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalCh
		log.Info("stopping...")
		go func() {
			<-signalCh
			os.Exit(1) // 强制结束
		}()
		// 暂停接口，等待处理中的请求结束
		server.Suspend()
		s.Close()
		if debugger != nil {
			debugger.Close()
		}
		// 退出导航服务
		server.Close()
		os.Exit(0)
	}()

	log.Infof("server listening at %v", s.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("failed to serve: %v", err)
	}
	time.Sleep(1 * time.Second) // 延迟等待"优雅退出"
	log.Info("accessroute closes")
}
