package chainchart

import "encoding/json"

// Artifact is the output of a successful compile.
type Artifact struct {
	Contract      string          `json:"contract"`
	NEF           string          `json:"nef"`
	Manifest      json.RawMessage `json:"manifest"`
	CompileErrors []string        `json:"compile_errors,omitempty"`
	NEFPath       string          `json:"nef_path,omitempty"`
	ManifestPath  string          `json:"manifest_path,omitempty"`
	ContractID    string          `json:"contract_id,omitempty"`
}

// DeployRequest selects what to deploy and where.
// Either ContractID or NEF+Manifest identifies the contract; empty
// connection fields fall back to the backend's own configuration.
type DeployRequest struct {
	NEF        string          `json:"nef,omitempty"`
	Manifest   json.RawMessage `json:"manifest,omitempty"`
	PrivateKey string          `json:"private_key,omitempty"`
	RPCURL     string          `json:"rpc_url,omitempty"`
	Network    string          `json:"network,omitempty"`
	ContractID string          `json:"contract_id,omitempty"`
	UserID     string          `json:"user_id,omitempty"`
}

// Deployment is the result of a deploy.
type Deployment struct {
	TxHash       string `json:"tx_hash"`
	ContractHash string `json:"contract_hash,omitempty"`
	Mock         bool   `json:"mock,omitempty"`
}

// Execution is the trace of running a diagram against a deployed contract.
type Execution struct {
	Logs        []json.RawMessage `json:"execution_logs"`
	FinalMemory map[string]any    `json:"final_memory"`
	Trace       []json.RawMessage `json:"execution_trace,omitempty"`
}
