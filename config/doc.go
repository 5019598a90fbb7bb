// Package config loads the redis-profiler configuration.
//
// Values come from Default, then an optional YAML file, then the environment:
//
//	logger:
//	  level: debug
//	profiler:
//	  address: ":8080"
//	  flushInterval: 10ms
//	instances:
//	  cache:
//	    addrs: ["127.0.0.1:6379"]
//	  sessions:
//	    cluster: true
//	    addrs: ["10.0.0.1:7000", "10.0.0.2:7000"]
//	    username: profiler
//	    password: secret
//
// Unknown YAML keys are rejected.
package config
