package opslevel

// GraphQL documents sent to the platform. Selection sets mirror the record
// types in types.go field for field.
const (
	serviceMaturityQuery = `query getServiceMaturityForBackstage($alias: String!) {
  account {
    rubric {
      levels {
        nodes {
          index
          name
          description
        }
      }
    }
    service(alias: $alias) {
      htmlUrl
      maturityReport {
        overallLevel {
          index
          name
          description
        }
        categoryBreakdown {
          category {
            name
          }
          level {
            name
          }
        }
      }
      serviceStats {
        rubric {
          checkResults {
            byLevel {
              nodes {
                level {
                  index
                  name
                }
                items {
                  nodes {
                    message
                    warnMessage
                    createdAt
                    check {
                      id
                      enableOn
                      name
                      type
                      category {
                        name
                      }
                    }
                    status
                  }
                }
              }
            }
          }
        }
      }
      checkStats {
        totalChecks
        totalPassingChecks
      }
    }
  }
}`

	servicesReportQuery = `query servicesReport {
  account {
    rubric {
      levels {
        totalCount
        nodes {
          index
          name
          alias
        }
      }
      categories {
        nodes {
          id
          name
        }
      }
    }
    servicesReport {
      levelCounts {
        level {
          name
        }
        serviceCount
      }
      categoryLevelCounts {
        category {
          name
        }
        level {
          name
          index
        }
        serviceCount
      }
    }
  }
}`

	importEntityMutation = `mutation import($entityRef: String!, $entity: JSON!) {
  import: importEntityFromBackstage(entityRef: $entityRef, entity: $entity) {
    errors {
      message
    }
    actionMessage
    htmlUrl
  }
}`

	serviceLanguageQuery = `query getServiceLanguage($alias: String!) {
  account {
    service(alias: $alias) {
      name
      repos {
        edges {
          node {
            languages {
              name
              usage
            }
          }
        }
      }
    }
  }
}`

	serviceUpdateMutation = `mutation serviceUpdate($alias: String!, $language: String, $framework: String) {
  serviceUpdate(input: {alias: $alias, language: $language, framework: $framework}) {
    errors {
      message
    }
  }
}`
)

// Operation names used in logs and errors.
const (
	opServiceMaturity = "getServiceMaturityForBackstage"
	opServicesReport  = "servicesReport"
	opImport          = "import"
	opServiceLanguage = "getServiceLanguage"
	opServiceUpdate   = "serviceUpdate"
)
