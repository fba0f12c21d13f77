package main

import "github.com/ymonitor/ymonitor/internal/discovery"

// defaultOSTemplates seeds discovery.DetectOS's sysObjectID match table
// (the precedence tier 1 match, confidence 90) with the enterprise
// OID bases of a set of common vendor families.
// A deployment can override/extend these by editing the returned map
// before passing it to discovery.NewOrchestrator.
func defaultOSTemplates() map[string]discovery.OSTemplate {
	return map[string]discovery.OSTemplate{
		"cisco-ios": {
			Vendor: "Cisco", OSFamily: "IOS",
			EntityOIDBase: "1.3.6.1.4.1.9.1",
			SensorOIDBase: "1.3.6.1.4.1.9.9.91.1.1.1.1",
			SupportsCDP:   true,
		},
		"cisco-nxos": {
			Vendor: "Cisco", OSFamily: "NX-OS",
			EntityOIDBase: "1.3.6.1.4.1.9.12.3",
			SensorOIDBase: "1.3.6.1.4.1.9.9.91.1.1.1.1",
			SupportsCDP:   true,
		},
		"cisco-asa": {
			Vendor: "Cisco", OSFamily: "ASA",
			EntityOIDBase: "1.3.6.1.4.1.9.1.745",
			SupportsCDP:   true,
		},
		"cisco-generic": {
			Vendor: "Cisco", OSFamily: "generic",
			EntityOIDBase: "1.3.6.1.4.1.9",
			SupportsCDP:   true,
		},
		"junos": {
			Vendor: "Juniper", OSFamily: "JunOS",
			EntityOIDBase: "1.3.6.1.4.1.2636",
			SupportsLLDP:  true,
		},
		"arista-eos": {
			Vendor: "Arista", OSFamily: "EOS",
			EntityOIDBase: "1.3.6.1.4.1.30065",
			SupportsLLDP:  true,
		},
		"hp-procurve": {
			Vendor: "HP", OSFamily: "ProCurve",
			EntityOIDBase: "1.3.6.1.4.1.11.2.3.7.11",
			SupportsLLDP:  true,
		},
		"vmware-esxi": {
			Vendor: "VMware", OSFamily: "ESXi",
			EntityOIDBase: "1.3.6.1.4.1.6876",
		},
		"linux": {
			Vendor: "", OSFamily: "Linux",
			EntityOIDBase: "1.3.6.1.4.1.8072.3.2.10",
		},
		"windows": {
			Vendor: "Microsoft", OSFamily: "Windows",
			EntityOIDBase: "1.3.6.1.4.1.311",
		},
		"generic": {
			OSFamily: "generic",
		},
	}
}
