// Package services implements the driving ports: the application's
// use cases, wired to infrastructure through the driven ports.
//
// Services contain all orchestration logic: job ingestion and parsing,
// index lifecycle and validation, the background sync pipeline
// (chunk -> embed -> upsert), and querying. They hold no
// infrastructure code of their own.
//
// All Job and Index mutation goes through the domain transition
// methods, applied inside store Update closures so concurrent writers
// never race a status field.
package services
