package exporters

// SessionIndexMapping is the index mapping for SessionDocument.
const SessionIndexMapping = `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0
  },
  "mappings": {
    "properties": {
      "id": {
        "type": "keyword"
      },
      "event": {
        "type": "keyword"
      },
      "type": {
        "type": "keyword"
      },
      "name": {
        "type": "text",
        "fields": {
          "keyword": {
            "type": "keyword",
            "ignore_above": 256
          }
        }
      },
      "abstract": {
        "type": "text"
      },
      "level": {
        "type": "keyword"
      },
      "start": {
        "type": "date"
      },
      "end": {
        "type": "date"
      },
      "day": {
        "type": "keyword"
      },
      "speakers": {
        "type": "text",
        "fields": {
          "keyword": {
            "type": "keyword",
            "ignore_above": 256
          }
        }
      },
      "distinguished_speaker": {
        "type": "boolean"
      },
      "technologies": {
        "type": "keyword"
      },
      "room": {
        "type": "keyword"
      },
      "capacity": {
        "type": "integer"
      },
      "seats_remaining": {
        "type": "integer"
      },
      "incomplete": {
        "type": "boolean"
      },
      "exported_at": {
        "type": "date"
      }
    }
  }
}`
