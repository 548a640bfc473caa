// Package monitoredservice reconciles whole monitored service documents.
//
// A document lists the health sources of one service in one environment.
// Service.Plan decodes every health source through the registry, loads the
// configs stored for the monitored service and reconciles each health
// source against its own stored configs, several at a time. Stored health
// sources that the document no longer lists are planned for deletion.
// Service.Apply writes a plan to the store, and Service.Describe turns
// stored configs back into a document.
package monitoredservice
