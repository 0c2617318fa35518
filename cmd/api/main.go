// @title           DocChat RAG API
// @version         1.0
// @description     Per-session multimodal document chat: upload files into a session, then ask questions answered over the session's own index.
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/DocChatAPI/internal/cache"
	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/data/store"
	"github.com/akolanti/DocChatAPI/internal/domain/jobModel"
	"github.com/akolanti/DocChatAPI/internal/handlers"
	"github.com/akolanti/DocChatAPI/internal/index"
	"github.com/akolanti/DocChatAPI/internal/ingest"
	"github.com/akolanti/DocChatAPI/internal/job"
	"github.com/akolanti/DocChatAPI/internal/orchestrator"
	"github.com/akolanti/DocChatAPI/internal/rag/embedding"
	"github.com/akolanti/DocChatAPI/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/DocChatAPI/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/DocChatAPI/internal/rag/llm/gemini"
	"github.com/akolanti/DocChatAPI/internal/rag/vision"
	"github.com/akolanti/DocChatAPI/internal/server"
	"github.com/akolanti/DocChatAPI/internal/tools"
	"github.com/akolanti/DocChatAPI/internal/worker"
	"github.com/akolanti/DocChatAPI/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered ingest job channel
	jobChannel := make(chan jobModel.IngestJob, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and session stores
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		SessionStore:      store.GetRedisSessionStore(serviceContext),
		MessageStore:      store.GetRedisMessageStore(serviceContext),
	}
	logger.Info("Starting job service")

	if serviceConfig.SessionStore == nil || serviceConfig.MessageStore == nil {
		logger.Error("Redis stores are offline, falling back to in-memory stores")
		serviceConfig.SessionStore = store.InitInMemorySessionStore()
		serviceConfig.MessageStore = store.InitInMemoryMessageStore()
	}
	service := job.InitJobService(serviceConfig)

	geminiKey := os.Getenv(config.GeminiAPIKeyEnv)

	var embeddingService embedding.Embedder
	if config.EmbeddingProvider == "openai" {
		embeddingService = openaiEmbedding.GetOpenAIEmbeddingClient(os.Getenv(config.OpenAIAPIKeyEnv))
	} else {
		embeddingService = googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, geminiKey)
	}
	llmProvider := gemini.GetGeminiClient(serviceContext, config.GeminiModelName, geminiKey)

	if embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	var captioner ingest.Captioner
	if geminiCaptioner := vision.GetGeminiCaptioner(serviceContext, geminiKey); geminiCaptioner != nil {
		captioner = geminiCaptioner
	} else {
		logger.Warn("Image captioning disabled, image uploads will be rejected")
	}

	indexManager := index.NewManager(config.IndexBaseDir, embeddingService)
	ingestor := ingest.NewIngestor(indexManager, serviceConfig.SessionStore, captioner)

	queryPipeline := orchestrator.New(orchestrator.Params{
		Searcher: indexManager,
		Cache:    cache.GetQueryCache(serviceContext),
		Embedder: embeddingService,
		LLM:      llmProvider,
		Tools:    tools.GetMCPRunner(serviceContext),
		Reranker: orchestrator.NewEmbeddingReranker(embeddingService),
	})

	handlers.InitApiHandler(service, queryPipeline, indexManager)

	//init worker pool
	worker.InitServices(service, ingestor)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
