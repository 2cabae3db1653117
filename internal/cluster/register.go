// Package cluster registers the server with Consul so lobby frontends can
// discover game instances. Registration is optional; a server with no
// Consul address configured runs standalone.
package cluster

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	consul "github.com/hashicorp/consul/api"
)

// Registration identifies this instance inside the cluster.
type Registration struct {
	client    *consul.Client
	serviceID string
}

// Register announces the service to the Consul agent at consulAddr. The
// health check polls the HTTP /healthz endpoint on listenAddr.
func Register(consulAddr, serviceName, listenAddr string) (*Registration, error) {
	config := consul.DefaultConfig()
	config.Address = consulAddr

	client, err := consul.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("consul client: %w", err)
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	serviceID := fmt.Sprintf("%s-%s", serviceName, hostname)

	port := 80
	if _, p, found := strings.Cut(listenAddr, ":"); found {
		if n, err := strconv.Atoi(p); err == nil {
			port = n
		}
	}

	registration := &consul.AgentServiceRegistration{
		ID:   serviceID,
		Name: serviceName,
		Port: port,
		Tags: []string{"websocket", "game"},
		Check: &consul.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/healthz", hostname, port),
			Timeout:                        "5s",
			Interval:                       "10s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}

	if err := client.Agent().ServiceRegister(registration); err != nil {
		return nil, fmt.Errorf("consul register: %w", err)
	}
	log.Printf("[Cluster] Registered as %s with Consul at %s", serviceID, consulAddr)
	return &Registration{client: client, serviceID: serviceID}, nil
}

// Deregister removes the instance from the catalog on shutdown.
func (r *Registration) Deregister() {
	if r == nil {
		return
	}
	if err := r.client.Agent().ServiceDeregister(r.serviceID); err != nil {
		log.Printf("[Cluster] Deregister %s: %v", r.serviceID, err)
	}
}
