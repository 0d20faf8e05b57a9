// Package config loads the cluster inventory and BMC credentials.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Node is one server's identity record: every address the toolkit knows
// about it. Records are built once per invocation and immutable afterwards.
type Node struct {
	Name       string `yaml:"name"`
	BMCIP      string `yaml:"bmc_ip,omitempty"`
	BMCMAC     string `yaml:"bmc_mac,omitempty"`
	OSIP       string `yaml:"os_ip,omitempty"`
	OSHostname string `yaml:"os_hostname,omitempty"`
	StorageIP  string `yaml:"storage_ip,omitempty"`
}

// Validate rejects a node that carries no reachable address. Without at
// least a BMC or OS address there is nothing the toolkit can talk to.
func (n Node) Validate() error {
	if n.Name == "" {
		return fmt.Errorf("node has no name")
	}
	if n.BMCIP == "" && n.OSIP == "" {
		return fmt.Errorf("node %s: neither bmc_ip nor os_ip set", n.Name)
	}
	return nil
}

// Inventory is the full set of known nodes.
type Inventory struct {
	Nodes []Node `yaml:"nodes"`
}

// LoadInventory reads and validates a yaml inventory file.
func LoadInventory(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory: %w", err)
	}

	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("parsing inventory %s: %w", path, err)
	}
	for _, n := range inv.Nodes {
		if err := n.Validate(); err != nil {
			return nil, fmt.Errorf("inventory %s: %w", path, err)
		}
	}
	return &inv, nil
}

// Credential is a BMC (username, secret) pair, loaded once per invocation
// and shared read-only by every client. It is never written anywhere.
type Credential struct {
	Username string
	Password string
}

// LoadCredential resolves credentials from explicit values with environment
// fallback (RACKCTL_USER / RACKCTL_PASS).
func LoadCredential(username, password string) (Credential, error) {
	if username == "" {
		username = os.Getenv("RACKCTL_USER")
	}
	if password == "" {
		password = os.Getenv("RACKCTL_PASS")
	}
	if username == "" || password == "" {
		return Credential{}, fmt.Errorf("BMC credentials required (--user/--pass or RACKCTL_USER/RACKCTL_PASS)")
	}
	return Credential{Username: username, Password: password}, nil
}
