// Package config provides configuration management for dojo.
//
// Configuration is layered, lowest precedence first:
//
//  1. Built-in defaults (GetDefaultConfig)
//  2. config.yaml in the configuration directory (default ~/.config/dojo,
//     overridable with --config-path)
//  3. Environment variables (FRONTEND_URL, PORT and DOJO_*)
//  4. Command line flags, applied by the cmd package
//
// # Configuration File
//
//	server:
//	  port: 3001
//	  allowedOrigin: "http://localhost:3000"
//	engine:
//	  binary: docker
//	  network: devops-dojo-net
//	  startupPolicy: strict   # or lenient
//	session:
//	  readinessDelay: 2s
//	  containerName: "devops-dojo-{{ .ConnectionID }}"
//	scenarios:
//	  defaultImage: devopslearn/scenario-base
//	  images:
//	    tf-drift: devopslearn/scenario-terraform-drift
//	  privileged: [k8s-crashloop, k8s-dns, k8s-istio]
//
// Entries under scenarios.images are merged with the built-in catalog.
//
// # Validation
//
// LoadConfig validates the merged result and returns ValidationErrors that
// list every problem at once. The startup policy has no implicit fallback:
// it must be strict or lenient.
//
// # Hot Reload
//
// Watcher observes config.yaml with fsnotify, debounces bursts of writes and
// hands every cleanly validated configuration to its OnReload callback. The
// server uses this to swap the scenario catalog without a restart. Other
// sections only take effect on restart.
package config
