package sqlinline

const QSelectIntegrationToken = `--sql c9721e41-7377-4b81-9d64-41017fb7bb1e
select token, properties
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql 4ec3cddd-625f-4147-9737-52c4718f2ffa
insert into integration_tokens (provider, token, properties, updated_at)
values ($1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now())
on conflict (provider) do update set
    token = excluded.token,
    properties = excluded.properties,
    updated_at = now();
`

const QDeleteIntegrationToken = `--sql f861bd7d-f741-4104-a22d-893b0424bc36
delete from integration_tokens
where provider = $1::text;
`
