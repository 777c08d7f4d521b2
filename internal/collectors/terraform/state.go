package terraform

import (
	"encoding/json"
)

// ShowOutput represents the document printed by terraform show -json
type ShowOutput struct {
	FormatVersion    string       `json:"format_version"`
	TerraformVersion string       `json:"terraform_version"`
	Values           *StateValues `json:"values"`
}

// StateValues holds the state's resolved values tree
type StateValues struct {
	RootModule *StateModule `json:"root_module"`
}

// StateModule is the root module's slice of the values tree
type StateModule struct {
	Resources []StateResource `json:"resources"`
}

// StateResource is one resource instance in the state. Values stays raw
// until the resource type picks its schema.
type StateResource struct {
	Address string          `json:"address"`
	Type    string          `json:"type"`
	Name    string          `json:"name"`
	Values  json.RawMessage `json:"values"`
}

// containerValues is the docker_container schema slice the comparison needs
type containerValues struct {
	Name             string              `json:"name"`
	Image            string              `json:"image"`
	MustRun          bool                `json:"must_run"`
	Restart          string              `json:"restart"`
	Env              []string            `json:"env"`
	Ports            []portValues        `json:"ports"`
	NetworksAdvanced []networkAttachment `json:"networks_advanced"`
}

type portValues struct {
	Internal int    `json:"internal"`
	External int    `json:"external"`
	Protocol string `json:"protocol"`
	IP       string `json:"ip"`
}

type networkAttachment struct {
	Name string `json:"name"`
}

// networkValues is the docker_network schema slice the comparison needs
type networkValues struct {
	Name       string       `json:"name"`
	Driver     string       `json:"driver"`
	IPAMConfig []ipamConfig `json:"ipam_config"`
}

type ipamConfig struct {
	Subnet string `json:"subnet"`
}

// volumeValues is the docker_volume schema slice the comparison needs
type volumeValues struct {
	Name   string `json:"name"`
	Driver string `json:"driver"`
}

// imageValues is the docker_image schema slice recorded for reference
type imageValues struct {
	Name       string `json:"name"`
	RepoDigest string `json:"repo_digest"`
	ImageID    string `json:"image_id"`
}
