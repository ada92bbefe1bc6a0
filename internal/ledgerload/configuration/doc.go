/*
Package configuration defines the input configuration for a ledgerload run.

A run is described by TestConfig, which groups:

  - how to reach the ledger (URL, optional setup URL, credentials, tenant, TLS, timeout)
  - the load profile (scenario, users, spawn rate, duration, wait time, throughput cap, tags)
  - workflow tuning (polling bounds, also used to await async transactions, activation pause,
    account count, transaction amount)
  - input files for scenarios that reuse existing accounts
  - the optional websocket result stream, metrics endpoint and results directory
  - logging

# Example YAML Configuration

	fineract:
	  url: https://localhost:8443/fineract-provider/api/v1
	  setupUrl: http://localhost:8081/fineract-provider/api/v1
	  username: mifos
	  password: password
	  tenantId: default
	  clientId: xyz
	  insecureSkipVerify: true
	  timeout: 30s
	load:
	  scenario: savings-n-accounts
	  users: 50
	  spawnRate: 5
	  duration: 10m
	  waitTime:
	    min: 500ms
	    max: 2s
	  maxRequestsPerSecond: 200
	workflow:
	  polling:
	    maxAttempts: 10
	    delay: 200ms
	    maxDelay: 5s
	  activationPause: 1s
	  numberOfAccounts: 10
	  transactionAmount: "50"
	resultStream:
	  enabled: true
	  url: wss://localhost:8443/fineract-result
	metrics:
	  listenAddress: ":9000"
	  resultsDir: results
	  maxErrorsToCollect: 10

Every key can also be set from the environment with the LEDGERLOAD_ prefix, dots replaced by
underscores, e.g. LEDGERLOAD_LOAD_USERS=20.

# Validation

TestConfig.Validate checks the struct tags and then the constraints spanning several fields:

  - waitTime.min must not exceed waitTime.max
  - transactionAmount must be positive
  - tags and excludeTags must not overlap
  - the logging level and format must be known

All failures are returned together in a multierror.
*/
package configuration
