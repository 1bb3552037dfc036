/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package startcmd

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/mux"
	"github.com/hyperledger/aries-framework-go-ext/component/storage/mongodb"
	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	edgelog "github.com/trustbloc/edge-core/pkg/log"

	"github.com/trustbloc/epf/pkg/restapi"
	"github.com/trustbloc/epf/pkg/restapi/operation"
	"github.com/trustbloc/epf/pkg/storage"
	"github.com/trustbloc/epf/pkg/storage/ariesstore"
	"github.com/trustbloc/epf/pkg/storage/memstore"
	"github.com/trustbloc/epf/pkg/storage/sqlitestore"
	cmdutils "github.com/trustbloc/epf/pkg/utils/cmd"
)

const (
	envPrefix = "EPF"

	hostURLFlagName      = "host-url"
	hostURLEnvKey        = "EPF_HOST_URL"
	hostURLFlagShorthand = "u"
	hostURLFlagUsage     = "URL to run the epf instance on. Format: HostName:Port." +
		" Alternatively, this can be set with the following environment variable: " + hostURLEnvKey

	legacyDatabaseTypeFlagName      = "legacy-database-type"
	legacyDatabaseTypeEnvKey        = "EPF_LEGACY_DATABASE_TYPE"
	legacyDatabaseTypeFlagShorthand = "t"
	legacyDatabaseTypeFlagUsage     = "The type of the small-capacity store drafts are kept in. " +
		"Supported options: mem, sqlite. Defaults to mem." +
		" Alternatively, this can be set with the following environment variable: " + legacyDatabaseTypeEnvKey

	legacyDatabaseURLFlagName      = "legacy-database-url"
	legacyDatabaseURLEnvKey        = "EPF_LEGACY_DATABASE_URL"
	legacyDatabaseURLFlagShorthand = "l"
	legacyDatabaseURLFlagUsage     = "The path or DSN of the sqlite database. Not needed if using mem." +
		" Alternatively, this can be set with the following environment variable: " + legacyDatabaseURLEnvKey

	legacyCapacityFlagName  = "legacy-capacity"
	legacyCapacityEnvKey    = "EPF_LEGACY_CAPACITY"
	legacyCapacityFlagUsage = "The number of bytes each session may keep in the mem legacy store. " +
		"Defaults to 5242880." +
		" Alternatively, this can be set with the following environment variable: " + legacyCapacityEnvKey

	primaryDatabaseTypeFlagName      = "primary-database-type"
	primaryDatabaseTypeEnvKey        = "EPF_PRIMARY_DATABASE_TYPE"
	primaryDatabaseTypeFlagShorthand = "d"
	primaryDatabaseTypeFlagUsage     = "The type of the large-capacity store sessions and attachments are kept in. " +
		"Supported options: mem, mongodb. Defaults to mem." +
		" Alternatively, this can be set with the following environment variable: " + primaryDatabaseTypeEnvKey

	primaryDatabaseURLFlagName      = "primary-database-url"
	primaryDatabaseURLEnvKey        = "EPF_PRIMARY_DATABASE_URL"
	primaryDatabaseURLFlagShorthand = "r"
	primaryDatabaseURLFlagUsage     = "The MongoDB connection string. Not needed if using mem." +
		" Alternatively, this can be set with the following environment variable: " + primaryDatabaseURLEnvKey

	databasePrefixFlagName      = "database-prefix"
	databasePrefixEnvKey        = "EPF_DATABASE_PREFIX"
	databasePrefixFlagShorthand = "p"
	databasePrefixFlagUsage     = "An optional prefix to be used when creating and retrieving underlying MongoDB " +
		"databases. Alternatively, this can be set with the following environment variable: " + databasePrefixEnvKey

	databaseTimeoutFlagName  = "database-timeout"
	databaseTimeoutEnvKey    = "EPF_DATABASE_TIMEOUT"
	databaseTimeoutFlagUsage = "Total time in seconds to wait until the primary database is available before giving " +
		"up. Defaults to 30." +
		" Alternatively, this can be set with the following environment variable: " + databaseTimeoutEnvKey

	corsAllowedOriginsFlagName  = "cors-allowed-origins"
	corsAllowedOriginsEnvKey    = "EPF_CORS_ALLOWED_ORIGINS"
	corsAllowedOriginsFlagUsage = "Comma-separated list of origins allowed to call the API from a browser. " +
		"Use * to allow any origin. CORS is disabled if not set." +
		" Alternatively, this can be set with the following environment variable: " + corsAllowedOriginsEnvKey

	tlsCertFileFlagName  = "tls-cert-file"
	tlsCertFileEnvKey    = "EPF_TLS_CERT_FILE"
	tlsCertFileFlagUsage = "TLS certificate file." +
		" Alternatively, this can be set with the following environment variable: " + tlsCertFileEnvKey

	tlsKeyFileFlagName  = "tls-key-file"
	tlsKeyFileEnvKey    = "EPF_TLS_KEY_FILE"
	tlsKeyFileFlagUsage = "TLS key file." +
		" Alternatively, this can be set with the following environment variable: " + tlsKeyFileEnvKey

	logLevelFlagName      = "log-level"
	logLevelEnvKey        = "EPF_LOG_LEVEL"
	logLevelFlagShorthand = "g"
	logLevelFlagUsage     = "Logging level to set. Supported options: critical, error, warning, info, debug. " +
		`Defaults to "info".` +
		" Alternatively, this can be set with the following environment variable: " + logLevelEnvKey

	configFileFlagName  = "config-file"
	configFileEnvKey    = "EPF_CONFIG_FILE"
	configFileFlagUsage = "Optional config file (yaml, json or toml) keyed by flag name. Values only fill " +
		"settings not given on the command line or in the environment." +
		" Alternatively, this can be set with the following environment variable: " + configFileEnvKey

	databaseTypeMemOption     = "mem"
	databaseTypeSQLiteOption  = "sqlite"
	databaseTypeMongoDBOption = "mongodb"

	logLevelCritical = "critical"
	logLevelError    = "error"
	logLevelWarn     = "warning"
	logLevelInfo     = "info"
	logLevelDebug    = "debug"

	defaultLegacyCapacity  = 5 << 20
	defaultDatabaseTimeout = 30
)

var (
	errInvalidLegacyDatabaseType = errors.New("legacy database type not set to a valid type." +
		" run start --help to see the available options")
	errInvalidPrimaryDatabaseType = errors.New("primary database type not set to a valid type." +
		" run start --help to see the available options")
	errMissingDatabaseURL = errors.New("database URL not provided")
)

type epfParameters struct {
	srv                 server
	hostURL             string
	legacyDatabaseType  string
	legacyDatabaseURL   string
	legacyCapacity      int
	primaryDatabaseType string
	primaryDatabaseURL  string
	databasePrefix      string
	databaseTimeout     time.Duration
	corsAllowedOrigins  []string
	tlsCertFile         string
	tlsKeyFile          string
}

type server interface {
	ListenAndServe(host, certFile, keyFile string, router http.Handler) error
}

// HTTPServer represents an actual HTTP server implementation.
type HTTPServer struct{}

// ListenAndServe starts the server using the standard Go HTTP server implementation.
// TLS is used when both a certificate and a key file are given.
func (s *HTTPServer) ListenAndServe(host, certFile, keyFile string, router http.Handler) error {
	if certFile != "" && keyFile != "" {
		return http.ListenAndServeTLS(host, certFile, keyFile, router)
	}

	return http.ListenAndServe(host, router) //nolint: gosec
}

// GetStartCmd returns the Cobra start command.
func GetStartCmd(srv server) *cobra.Command {
	startCmd := createStartCmd(srv)

	createFlags(startCmd)

	return startCmd
}

func createStartCmd(srv server) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start EPF",
		Long:  "Start EPF",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := loadConfigFile(cmd)
			if err != nil {
				return err
			}

			parameters, err := getEPFParameters(cmd, srv)
			if err != nil {
				return err
			}

			loggingLevel, err := cmdutils.GetUserSetVar(cmd, logLevelFlagName, logLevelEnvKey, true)
			if err != nil {
				return err
			}

			setLogLevel(loggingLevel)

			return startEPF(parameters)
		},
	}
}

func createFlags(startCmd *cobra.Command) {
	startCmd.Flags().StringP(hostURLFlagName, hostURLFlagShorthand, "", hostURLFlagUsage)
	startCmd.Flags().StringP(legacyDatabaseTypeFlagName, legacyDatabaseTypeFlagShorthand, "",
		legacyDatabaseTypeFlagUsage)
	startCmd.Flags().StringP(legacyDatabaseURLFlagName, legacyDatabaseURLFlagShorthand, "",
		legacyDatabaseURLFlagUsage)
	startCmd.Flags().String(legacyCapacityFlagName, "", legacyCapacityFlagUsage)
	startCmd.Flags().StringP(primaryDatabaseTypeFlagName, primaryDatabaseTypeFlagShorthand, "",
		primaryDatabaseTypeFlagUsage)
	startCmd.Flags().StringP(primaryDatabaseURLFlagName, primaryDatabaseURLFlagShorthand, "",
		primaryDatabaseURLFlagUsage)
	startCmd.Flags().StringP(databasePrefixFlagName, databasePrefixFlagShorthand, "", databasePrefixFlagUsage)
	startCmd.Flags().String(databaseTimeoutFlagName, "", databaseTimeoutFlagUsage)
	startCmd.Flags().String(corsAllowedOriginsFlagName, "", corsAllowedOriginsFlagUsage)
	startCmd.Flags().String(tlsCertFileFlagName, "", tlsCertFileFlagUsage)
	startCmd.Flags().String(tlsKeyFileFlagName, "", tlsKeyFileFlagUsage)
	startCmd.Flags().StringP(logLevelFlagName, logLevelFlagShorthand, "", logLevelFlagUsage)
	startCmd.Flags().String(configFileFlagName, "", configFileFlagUsage)
}

func loadConfigFile(cmd *cobra.Command) error {
	configFile, err := cmdutils.GetUserSetVar(cmd, configFileFlagName, configFileEnvKey, true)
	if err != nil || configFile == "" {
		return err
	}

	return cmdutils.LoadConfigFile(cmd, configFile, envPrefix)
}

func getEPFParameters(cmd *cobra.Command, srv server) (*epfParameters, error) { //nolint: funlen
	hostURL, err := cmdutils.GetUserSetVar(cmd, hostURLFlagName, hostURLEnvKey, false)
	if err != nil {
		return nil, err
	}

	legacyDatabaseType, err := getOptionalVar(cmd, legacyDatabaseTypeFlagName, legacyDatabaseTypeEnvKey,
		databaseTypeMemOption)
	if err != nil {
		return nil, err
	}

	legacyDatabaseURL, err := cmdutils.GetUserSetVar(cmd, legacyDatabaseURLFlagName, legacyDatabaseURLEnvKey, true)
	if err != nil {
		return nil, err
	}

	legacyCapacity, err := getOptionalInt(cmd, legacyCapacityFlagName, legacyCapacityEnvKey, defaultLegacyCapacity)
	if err != nil {
		return nil, err
	}

	primaryDatabaseType, err := getOptionalVar(cmd, primaryDatabaseTypeFlagName, primaryDatabaseTypeEnvKey,
		databaseTypeMemOption)
	if err != nil {
		return nil, err
	}

	primaryDatabaseURL, err := cmdutils.GetUserSetVar(cmd, primaryDatabaseURLFlagName, primaryDatabaseURLEnvKey,
		true)
	if err != nil {
		return nil, err
	}

	databasePrefix, err := cmdutils.GetUserSetVar(cmd, databasePrefixFlagName, databasePrefixEnvKey, true)
	if err != nil {
		return nil, err
	}

	databaseTimeout, err := getOptionalInt(cmd, databaseTimeoutFlagName, databaseTimeoutEnvKey,
		defaultDatabaseTimeout)
	if err != nil {
		return nil, err
	}

	corsAllowedOrigins, err := cmdutils.GetUserSetVar(cmd, corsAllowedOriginsFlagName, corsAllowedOriginsEnvKey,
		true)
	if err != nil {
		return nil, err
	}

	tlsCertFile, err := getTLSFile(cmd, tlsCertFileFlagName, tlsCertFileEnvKey)
	if err != nil {
		return nil, err
	}

	tlsKeyFile, err := getTLSFile(cmd, tlsKeyFileFlagName, tlsKeyFileEnvKey)
	if err != nil {
		return nil, err
	}

	return &epfParameters{
		srv:                 srv,
		hostURL:             hostURL,
		legacyDatabaseType:  legacyDatabaseType,
		legacyDatabaseURL:   legacyDatabaseURL,
		legacyCapacity:      legacyCapacity,
		primaryDatabaseType: primaryDatabaseType,
		primaryDatabaseURL:  primaryDatabaseURL,
		databasePrefix:      databasePrefix,
		databaseTimeout:     time.Duration(databaseTimeout) * time.Second,
		corsAllowedOrigins:  splitList(corsAllowedOrigins),
		tlsCertFile:         tlsCertFile,
		tlsKeyFile:          tlsKeyFile,
	}, nil
}

func getOptionalVar(cmd *cobra.Command, flagName, envKey, defaultValue string) (string, error) {
	value, err := cmdutils.GetUserSetVar(cmd, flagName, envKey, true)
	if err != nil {
		return "", err
	}

	if value == "" {
		return defaultValue, nil
	}

	return value, nil
}

func getOptionalInt(cmd *cobra.Command, flagName, envKey string, defaultValue int) (int, error) {
	value, err := cmdutils.GetUserSetVar(cmd, flagName, envKey, true)
	if err != nil {
		return 0, err
	}

	if value == "" {
		return defaultValue, nil
	}

	number, err := strconv.Atoi(value)
	if err != nil || number <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", flagName, value)
	}

	return number, nil
}

// An explicitly blank TLS file is rejected, an unset one disables TLS.
func getTLSFile(cmd *cobra.Command, flagName, envKey string) (string, error) {
	value, err := cmdutils.GetUserSetVar(cmd, flagName, envKey, true)
	if err != nil {
		return "", err
	}

	if cmd.Flags().Changed(flagName) && value == "" {
		return "", fmt.Errorf("%s value is empty", flagName)
	}

	return value, nil
}

func splitList(value string) []string {
	var items []string

	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}

func setLogLevel(logLevel string) {
	if logLevel == "" {
		logLevel = logLevelInfo
	}

	level, err := edgelog.ParseLevel(logLevel)
	if err != nil {
		log.Warnf(`%s is not a valid logging level. It must be one of the following: `+
			`critical, error, warning, info, debug. Defaulting to "info".`, logLevel)

		level = edgelog.INFO
	}

	edgelog.SetLevel("", level)
}

func startEPF(parameters *epfParameters) error {
	legacyProvider, err := createLegacyProvider(parameters)
	if err != nil {
		return err
	}

	primaryProvider, err := createPrimaryProvider(parameters)
	if err != nil {
		return err
	}

	epfService, err := restapi.New(&operation.Config{
		LegacyProvider:  legacyProvider,
		PrimaryProvider: primaryProvider,
	})
	if err != nil {
		return err
	}

	handlers := epfService.GetOperations()
	router := mux.NewRouter()
	router.UseEncodedPath()

	for _, handler := range handlers {
		router.HandleFunc(handler.Path(), handler.Handle()).Methods(handler.Method())
	}

	log.Infof("Starting epf rest server on host %s", parameters.hostURL)

	return parameters.srv.ListenAndServe(parameters.hostURL, parameters.tlsCertFile, parameters.tlsKeyFile,
		withCORS(router, parameters.corsAllowedOrigins))
}

func withCORS(router http.Handler, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		return router
	}

	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Location", "Content-Disposition"},
	}).Handler(router)
}

func createLegacyProvider(parameters *epfParameters) (storage.Provider, error) {
	switch {
	case strings.EqualFold(parameters.legacyDatabaseType, databaseTypeMemOption):
		return memstore.NewProvider(memstore.WithCapacity(parameters.legacyCapacity)), nil
	case strings.EqualFold(parameters.legacyDatabaseType, databaseTypeSQLiteOption):
		if parameters.legacyDatabaseURL == "" {
			return nil, errMissingDatabaseURL
		}

		return sqlitestore.NewProvider(parameters.legacyDatabaseURL)
	default:
		return nil, errInvalidLegacyDatabaseType
	}
}

func createPrimaryProvider(parameters *epfParameters) (storage.Provider, error) {
	switch {
	case strings.EqualFold(parameters.primaryDatabaseType, databaseTypeMemOption):
		return ariesstore.NewProvider(mem.NewProvider()), nil
	case strings.EqualFold(parameters.primaryDatabaseType, databaseTypeMongoDBOption):
		return createMongoDBProvider(parameters)
	default:
		return nil, errInvalidPrimaryDatabaseType
	}
}

func createMongoDBProvider(parameters *epfParameters) (storage.Provider, error) {
	if parameters.primaryDatabaseURL == "" {
		return nil, errMissingDatabaseURL
	}

	mongoDBProvider, err := mongodb.NewProvider(parameters.primaryDatabaseURL,
		mongodb.WithDBPrefix(parameters.databasePrefix), mongodb.WithTimeout(parameters.databaseTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to create MongoDB provider: %w", err)
	}

	err = retry(mongoDBProvider.Ping, parameters.databaseTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	return ariesstore.NewProvider(mongoDBProvider), nil
}

// retry calls fn with exponential backoff until it succeeds or timeout has elapsed.
func retry(fn func() error, timeout time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = timeout

	return backoff.RetryNotify(fn, b, func(retryErr error, wait time.Duration) {
		log.Warnf("Failed to connect to the database, will sleep for %s before trying again: %s", wait, retryErr)
	})
}
