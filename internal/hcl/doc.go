// Package hcl provides the HCL implementation of network.Loader. It is
// responsible for parsing network files, evaluating stoichiometry
// expressions and translating the decoded blocks into the format-agnostic
// network model.
package hcl
