package doctor

// CredsSchema is the JSON Schema for credential bundle validation
const CredsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": [
    "noiseKey",
    "pairingEphemeralKeyPair",
    "signedIdentityKey",
    "identitySigningKey",
    "signedPreKey",
    "registrationId",
    "advSecretKey"
  ],
  "definitions": {
    "blob": {
      "type": "object",
      "required": ["type", "data"],
      "properties": {
        "type": { "const": "Buffer" },
        "data": {
          "type": "string",
          "pattern": "^[A-Za-z0-9+/]*={0,2}$"
        }
      }
    },
    "keyPair": {
      "type": "object",
      "required": ["private", "public"],
      "properties": {
        "private": { "$ref": "#/definitions/blob" },
        "public": { "$ref": "#/definitions/blob" }
      }
    }
  },
  "properties": {
    "noiseKey": { "$ref": "#/definitions/keyPair" },
    "pairingEphemeralKeyPair": { "$ref": "#/definitions/keyPair" },
    "signedIdentityKey": { "$ref": "#/definitions/keyPair" },
    "identitySigningKey": { "$ref": "#/definitions/keyPair" },
    "signedPreKey": {
      "type": "object",
      "required": ["keyPair", "signature", "keyId"],
      "properties": {
        "keyPair": { "$ref": "#/definitions/keyPair" },
        "signature": { "$ref": "#/definitions/blob" },
        "keyId": { "type": "integer", "minimum": 1 }
      }
    },
    "registrationId": {
      "type": "integer",
      "minimum": 0,
      "maximum": 16383
    },
    "advSecretKey": {
      "type": "string",
      "minLength": 1
    },
    "nextPreKeyId": { "type": "integer", "minimum": 0 },
    "firstUnuploadedPreKeyId": { "type": "integer", "minimum": 0 },
    "accountSyncCounter": { "type": "integer", "minimum": 0 },
    "registered": { "type": "boolean" }
  }
}`
