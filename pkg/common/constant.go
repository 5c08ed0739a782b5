package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	EnvKeyConfigFile string = "VESSEL_CONFIG_FILE"

	SystemActor    string = "system"
	AnonymousActor string = "anonymous"

	LoggerNameVesselCore    string = "vessel_core"
	LoggerNameScheduler     string = "scheduler"
	LoggerNameRestfulServer string = "restful_server"
	LoggerNameGrpcServer    string = "grpc_server"
	LoggerNameNotifier      string = "notifier"
	LoggerNameSimulation    string = "simulation"

	LoggerFieldCategory       string = "category"
	LoggerCategoryResource    string = "resource"
	LoggerCategoryAlert       string = "alert"
	LoggerCategoryThreshold   string = "threshold"
	LoggerCategoryEngine      string = "engine"
	LoggerCategoryBackground  string = "background"
	LoggerCategoryNotify      string = "notify"
	LoggerCategoryPersistence string = "persistence"
)
